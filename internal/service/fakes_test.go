package service

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
)

type scheduledAlarm struct {
	at   time.Time
	fire func(token string)
}

// manualAlarms records armed alarms and fires them on demand.
type manualAlarms struct {
	mu        sync.Mutex
	alarms    map[string]scheduledAlarm
	order     []string
	cancelled []string
	err       error
}

func newManualAlarms() *manualAlarms {
	return &manualAlarms{alarms: map[string]scheduledAlarm{}}
}

func (m *manualAlarms) Schedule(at time.Time, token string, fire func(token string)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.alarms[token] = scheduledAlarm{at: at, fire: fire}
	m.order = append(m.order, token)
	return nil
}

func (m *manualAlarms) Cancel(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.alarms, token)
	m.cancelled = append(m.cancelled, token)
}

func (m *manualAlarms) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alarms)
}

func (m *manualAlarms) last() (string, scheduledAlarm, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		if a, ok := m.alarms[m.order[i]]; ok {
			return m.order[i], a, true
		}
	}
	return "", scheduledAlarm{}, false
}

// fireLast fires the most recently armed live alarm.
func (m *manualAlarms) fireLast() bool {
	token, alarm, ok := m.last()
	if !ok {
		return false
	}
	m.mu.Lock()
	delete(m.alarms, token)
	m.mu.Unlock()
	alarm.fire(token)
	return true
}

type memoryReminderStore struct {
	mu      sync.Mutex
	state   *models.ReminderState
	saves   int
	clears  int
	loadErr error
}

func (s *memoryReminderStore) Load(ctx context.Context) (*models.ReminderState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.state == nil {
		return nil, appErrors.ErrCacheMiss
	}
	state := cloneReminder(*s.state)
	return &state, nil
}

func (s *memoryReminderStore) Save(ctx context.Context, state models.ReminderState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := cloneReminder(state)
	s.state = &saved
	s.saves++
	return nil
}

func (s *memoryReminderStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
	s.clears++
	return nil
}

type countingMetrics struct {
	mu          sync.Mutex
	reminders   map[string]int
	pipeline    map[models.PipelineStatus]int
	storeErrors map[string]int
	presentErrs int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{reminders: map[string]int{}, pipeline: map[models.PipelineStatus]int{}, storeErrors: map[string]int{}}
}

func (c *countingMetrics) ObserveReminder(event string) {
	c.mu.Lock()
	c.reminders[event]++
	c.mu.Unlock()
}

func (c *countingMetrics) ObservePipeline(status models.PipelineStatus) {
	c.mu.Lock()
	c.pipeline[status]++
	c.mu.Unlock()
}

func (c *countingMetrics) ObserveStoreError(op string) {
	c.mu.Lock()
	c.storeErrors[op]++
	c.mu.Unlock()
}

func (c *countingMetrics) ObservePresentError() {
	c.mu.Lock()
	c.presentErrs++
	c.mu.Unlock()
}

type recordingPresenter struct {
	mu       sync.Mutex
	requests []models.PresentationRequest
	err      error
}

func (p *recordingPresenter) Present(ctx context.Context, req models.PresentationRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	return p.err
}

func (p *recordingPresenter) presented() []models.PresentationRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.PresentationRequest, len(p.requests))
	copy(out, p.requests)
	return out
}
