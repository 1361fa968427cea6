package service

import (
	"sync"
	"time"

	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
)

// AlarmScheduler fires a callback at an absolute time, at most once per token.
type AlarmScheduler interface {
	Schedule(at time.Time, token string, fire func(token string)) error
	Cancel(token string)
}

// TimerScheduler is the in-process AlarmScheduler backed by runtime timers.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// NewTimerScheduler constructs an empty scheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[string]*time.Timer)}
}

// Schedule arms a timer for token. Times in the past fire immediately.
func (s *TimerScheduler) Schedule(at time.Time, token string, fire func(token string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return appErrors.ErrSchedulerUnavailable
	}
	if prev, ok := s.timers[token]; ok {
		prev.Stop()
	}
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	s.timers[token] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		_, live := s.timers[token]
		delete(s.timers, token)
		s.mu.Unlock()
		if live {
			fire(token)
		}
	})
	return nil
}

// Cancel stops the timer for token if it has not fired.
func (s *TimerScheduler) Cancel(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[token]; ok {
		t.Stop()
		delete(s.timers, token)
	}
}

// Pending returns the number of armed timers.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close stops every timer and rejects further scheduling.
func (s *TimerScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, t := range s.timers {
		t.Stop()
		delete(s.timers, token)
	}
	s.closed = true
}
