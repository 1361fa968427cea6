package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
)

type reminderController interface {
	State() models.ReminderState
	Cancel(ctx context.Context, reason string) bool
}

type readMarker interface {
	MarkRead(ctx context.Context, id int64) error
}

// AlertService handles what happens after an alert is on screen.
type AlertService struct {
	reminders reminderController
	history   readMarker
	logger    *zap.Logger
}

// NewAlertService constructs an AlertService.
func NewAlertService(reminders reminderController, history readMarker, logger *zap.Logger) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{reminders: reminders, history: history, logger: logger}
}

// Reminder returns the current reminder state.
func (s *AlertService) Reminder() models.ReminderState {
	return s.reminders.State()
}

// Dismiss cancels the outstanding reminder and optionally marks the alert read.
func (s *AlertService) Dismiss(ctx context.Context, req dto.DismissRequest) (models.ReminderState, error) {
	cancelled := s.reminders.Cancel(ctx, "dismissed")
	s.logger.Info("alert dismissed", zap.Int64("broadcast_id", req.BroadcastID), zap.Bool("reminder_cancelled", cancelled))
	if req.MarkRead && req.BroadcastID > 0 && s.history != nil {
		if err := s.history.MarkRead(ctx, req.BroadcastID); err != nil {
			return s.reminders.State(), err
		}
	}
	return s.reminders.State(), nil
}
