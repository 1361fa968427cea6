package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
)

// Reminder limits.
const (
	ReminderMaxFires       = 4
	ReminderSingleDelay    = 2 * time.Minute
	RegionalReminderFirst  = time.Minute
	RegionalReminderRepeat = 2 * time.Minute
	RegionalReminderFires  = 3
)

// ReminderPlan is the firing schedule derived from the interval preference.
type ReminderPlan struct {
	First    time.Duration
	Repeat   time.Duration
	MaxFires int
}

// PlanReminder interprets the reminder interval preference. "0", empty and invalid
// values disable reminders; "1" is a single reminder after two minutes; N >= 2
// repeats every N minutes. The regional mode ignores the preference.
func PlanReminder(interval string, regional bool) (ReminderPlan, bool) {
	if regional {
		return ReminderPlan{First: RegionalReminderFirst, Repeat: RegionalReminderRepeat, MaxFires: RegionalReminderFires}, true
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(interval))
	if err != nil || minutes <= 0 {
		return ReminderPlan{}, false
	}
	if minutes == 1 {
		return ReminderPlan{First: ReminderSingleDelay, MaxFires: 1}, true
	}
	every := time.Duration(minutes) * time.Minute
	return ReminderPlan{First: every, Repeat: every, MaxFires: ReminderMaxFires}, true
}

type reminderStore interface {
	Load(ctx context.Context) (*models.ReminderState, error)
	Save(ctx context.Context, state models.ReminderState) error
	Clear(ctx context.Context) error
}

type reminderMetrics interface {
	ObserveReminder(event string)
}

// ReminderFireFunc replays an alert when its reminder fires.
type ReminderFireFunc func(ctx context.Context, record models.BroadcastRecord)

// ReminderConfig tunes the scheduler.
type ReminderConfig struct {
	RegionalWEA bool
}

// ReminderScheduler owns the single outstanding reminder. Scheduling, cancelling
// and firing are serialized so at most one alarm is ever live.
type ReminderScheduler struct {
	mu      sync.Mutex
	alarms  AlarmScheduler
	store   reminderStore
	metrics reminderMetrics
	logger  *zap.Logger
	cfg     ReminderConfig
	now     func() time.Time
	state   models.ReminderState
	onFire  ReminderFireFunc
}

// NewReminderScheduler constructs a scheduler in the IDLE state.
func NewReminderScheduler(alarms AlarmScheduler, store reminderStore, metrics reminderMetrics, logger *zap.Logger, cfg ReminderConfig) *ReminderScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReminderScheduler{
		alarms:  alarms,
		store:   store,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
	s.state = models.IdleReminder(s.now().UTC())
	return s
}

// OnFire registers the replay callback.
func (s *ReminderScheduler) OnFire(fn ReminderFireFunc) {
	s.mu.Lock()
	s.onFire = fn
	s.mu.Unlock()
}

// State returns a copy of the current reminder state.
func (s *ReminderScheduler) State() models.ReminderState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneReminder(s.state)
}

// Schedule preempts any outstanding reminder and arms a new one for record.
// It reports whether a reminder was armed; an unavailable alarm collaborator is
// returned as an error and leaves the scheduler idle.
func (s *ReminderScheduler) Schedule(ctx context.Context, record models.BroadcastRecord, interval string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked("preempted")

	plan, ok := PlanReminder(interval, s.cfg.RegionalWEA)
	if !ok {
		s.persistLocked(ctx)
		return false, nil
	}
	if s.alarms == nil {
		s.logger.Warn("reminder not scheduled", zap.Error(appErrors.ErrSchedulerUnavailable))
		s.persistLocked(ctx)
		return false, appErrors.ErrSchedulerUnavailable
	}

	now := s.now().UTC()
	next := now.Add(plan.First)
	token := uuid.NewString()
	if err := s.alarms.Schedule(next, token, s.fire); err != nil {
		s.logger.Warn("reminder not scheduled", zap.Int64("broadcast_id", record.ID), zap.Error(err))
		s.observe("schedule_failed")
		s.persistLocked(ctx)
		return false, appErrors.Wrap(err, appErrors.ErrSchedulerUnavailable.Code, appErrors.ErrSchedulerUnavailable.Status, "failed to schedule reminder")
	}

	stored := record.Clone()
	s.state = models.ReminderState{
		Status:      models.ReminderScheduled,
		Token:       token,
		BroadcastID: record.ID,
		Broadcast:   &stored,
		MaxFires:    plan.MaxFires,
		Interval:    plan.Repeat,
		NextFireAt:  &next,
		UpdatedAt:   now,
	}
	s.observe("scheduled")
	s.persistLocked(ctx)
	s.logger.Info("reminder scheduled",
		zap.Int64("broadcast_id", record.ID),
		zap.Time("next_fire_at", next),
		zap.Int("max_fires", plan.MaxFires),
	)
	return true, nil
}

// Cancel returns the scheduler to IDLE, cancelling any outstanding alarm.
// It reports whether a reminder was pending.
func (s *ReminderScheduler) Cancel(ctx context.Context, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.cancelLocked(reason)
	s.persistLocked(ctx)
	return pending
}

// Restore re-arms a reminder persisted by a previous process.
func (s *ReminderScheduler) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	state, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if state.Status != models.ReminderScheduled || state.NextFireAt == nil || state.Broadcast == nil || s.alarms == nil {
		return nil
	}
	if err := s.alarms.Schedule(*state.NextFireAt, state.Token, s.fire); err != nil {
		return appErrors.Wrap(err, appErrors.ErrSchedulerUnavailable.Code, appErrors.ErrSchedulerUnavailable.Status, "failed to restore reminder")
	}
	s.state = cloneReminder(*state)
	s.logger.Info("reminder restored", zap.Int64("broadcast_id", state.BroadcastID), zap.Time("next_fire_at", *state.NextFireAt))
	return nil
}

func (s *ReminderScheduler) fire(token string) {
	ctx := context.Background()

	s.mu.Lock()
	if s.state.Status != models.ReminderScheduled || s.state.Token != token || s.state.Broadcast == nil {
		s.mu.Unlock()
		s.logger.Debug("ignoring stale reminder", zap.String("token", token))
		return
	}

	now := s.now().UTC()
	record := s.state.Broadcast.Clone()
	s.state.FireCount++
	s.state.Status = models.ReminderFired
	s.state.UpdatedAt = now
	s.observe("fired")

	if s.state.FireCount < s.state.MaxFires && s.state.Interval > 0 {
		next := now.Add(s.state.Interval)
		nextToken := uuid.NewString()
		if err := s.alarms.Schedule(next, nextToken, s.fire); err != nil {
			s.logger.Warn("reminder not re-armed", zap.Int64("broadcast_id", record.ID), zap.Error(err))
			s.observe("schedule_failed")
			s.state = models.IdleReminder(now)
		} else {
			s.state.Status = models.ReminderScheduled
			s.state.Token = nextToken
			s.state.NextFireAt = &next
		}
	} else {
		s.state = models.IdleReminder(now)
	}
	s.persistLocked(ctx)
	onFire := s.onFire
	s.mu.Unlock()

	s.logger.Info("reminder fired", zap.Int64("broadcast_id", record.ID))
	if onFire != nil {
		onFire(ctx, record)
	}
}

func (s *ReminderScheduler) cancelLocked(reason string) bool {
	if s.state.Status != models.ReminderScheduled {
		s.state = models.IdleReminder(s.now().UTC())
		return false
	}
	if s.alarms != nil {
		s.alarms.Cancel(s.state.Token)
	}
	s.logger.Info("reminder cancelled", zap.Int64("broadcast_id", s.state.BroadcastID), zap.String("reason", reason))
	s.observe("cancelled")
	s.state = models.IdleReminder(s.now().UTC())
	return true
}

func (s *ReminderScheduler) persistLocked(ctx context.Context) {
	if s.store == nil {
		return
	}
	var err error
	if s.state.Status == models.ReminderIdle {
		err = s.store.Clear(ctx)
	} else {
		err = s.store.Save(ctx, s.state)
	}
	if err != nil {
		s.logger.Warn("failed to persist reminder state", zap.Error(err))
	}
}

func (s *ReminderScheduler) observe(event string) {
	if s.metrics != nil {
		s.metrics.ObserveReminder(event)
	}
}

func cloneReminder(state models.ReminderState) models.ReminderState {
	out := state
	if state.Broadcast != nil {
		record := state.Broadcast.Clone()
		out.Broadcast = &record
	}
	if state.NextFireAt != nil {
		next := *state.NextFireAt
		out.NextFireAt = &next
	}
	return out
}
