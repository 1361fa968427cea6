package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
)

// Presenter hands alert-presentation decisions to the audio and UI collaborator.
type Presenter interface {
	Present(ctx context.Context, req models.PresentationRequest) error
}

// LogPresenter writes presentation requests to the log. It is the default when no
// broker is configured.
type LogPresenter struct {
	logger *zap.Logger
}

// NewLogPresenter constructs a LogPresenter.
func NewLogPresenter(logger *zap.Logger) *LogPresenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPresenter{logger: logger}
}

// Present logs the decision.
func (p *LogPresenter) Present(ctx context.Context, req models.PresentationRequest) error {
	p.logger.Info("alert presentation",
		zap.String("request_id", req.RequestID),
		zap.Int64("broadcast_id", req.Record.ID),
		zap.String("dialog_title", string(req.Policy.DialogTitle)),
		zap.String("tone", string(req.Policy.ToneType)),
		zap.Bool("play_tone", req.Policy.PlayTone),
		zap.Bool("vibrate", req.Policy.Vibrate),
		zap.Bool("speech", req.Policy.SpeechEnabled),
		zap.Duration("duration", req.Policy.AlertDuration),
		zap.Bool("reminder", req.Reminder),
	)
	return nil
}

type messagePublisher interface {
	Publish(topic string, retained bool, payload []byte) error
}

// MQTTPresenter publishes presentation requests as JSON to a local broker topic.
type MQTTPresenter struct {
	client messagePublisher
	topic  string
	logger *zap.Logger
}

// NewMQTTPresenter constructs an MQTTPresenter.
func NewMQTTPresenter(client messagePublisher, topic string, logger *zap.Logger) *MQTTPresenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MQTTPresenter{client: client, topic: topic, logger: logger}
}

// Present publishes the decision. Reminders go to the "/reminder" subtopic.
func (p *MQTTPresenter) Present(ctx context.Context, req models.PresentationRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal presentation request: %w", err)
	}
	topic := p.topic
	if req.Reminder {
		topic += "/reminder"
	}
	if err := p.client.Publish(topic, false, payload); err != nil {
		return fmt.Errorf("publish presentation request: %w", err)
	}
	p.logger.Debug("alert presentation published", zap.String("topic", topic), zap.String("request_id", req.RequestID))
	return nil
}
