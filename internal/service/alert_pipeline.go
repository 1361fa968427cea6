package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
)

type broadcastWriter interface {
	Insert(ctx context.Context, record *models.BroadcastRecord) (int64, error)
}

type environmentSource interface {
	Load(ctx context.Context, slot int) AlertEnvironment
}

type reminderPlanner interface {
	Schedule(ctx context.Context, record models.BroadcastRecord, interval string) (bool, error)
	OnFire(fn ReminderFireFunc)
}

type pipelineMetrics interface {
	ObservePipeline(status models.PipelineStatus)
	ObserveStoreError(op string)
	ObservePresentError()
}

// AlertPipeline turns an arrived broadcast into a persisted record, a presentation
// request and possibly a reminder.
type AlertPipeline struct {
	mu         sync.Mutex
	classifier *Classifier
	gate       *DedupGate
	store      broadcastWriter
	env        environmentSource
	presenter  Presenter
	reminders  reminderPlanner
	metrics    pipelineMetrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewAlertPipeline wires the pipeline and registers it as the reminder replay target.
func NewAlertPipeline(classifier *Classifier, gate *DedupGate, store broadcastWriter, env environmentSource, presenter Presenter, reminders reminderPlanner, metrics pipelineMetrics, logger *zap.Logger) *AlertPipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if presenter == nil {
		presenter = NewLogPresenter(logger)
	}
	p := &AlertPipeline{
		classifier: classifier,
		gate:       gate,
		store:      store,
		env:        env,
		presenter:  presenter,
		reminders:  reminders,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
	if reminders != nil {
		reminders.OnFire(p.Replay)
	}
	return p
}

// Process runs one broadcast through filter, dedup, persist, present and reminder
// steps. Storage and presentation failures are reported in the result and never
// stop the later steps.
func (p *AlertPipeline) Process(ctx context.Context, raw models.RawBroadcast) (models.PipelineResult, error) {
	if err := ctx.Err(); err != nil {
		return models.PipelineResult{}, err
	}

	env := p.env.Load(ctx, raw.Slot)
	record, pol := p.classifier.Classify(raw, env)
	log := p.logger.With(
		zap.Int("slot", record.Slot),
		zap.Int("serial_number", record.SerialNumber),
		zap.Int("service_category", record.ServiceCategory),
	)

	if ok, reason := p.classifier.Allowed(record, pol, env); !ok {
		log.Info("broadcast filtered", zap.String("reason", reason))
		p.observe(models.PipelineFiltered)
		return models.PipelineResult{Status: models.PipelineFiltered, FilterReason: reason, Policy: &pol}, nil
	}

	result := models.PipelineResult{Status: models.PipelineProcessed, Policy: &pol}

	p.mu.Lock()
	if !p.gate.Admit(record) {
		p.mu.Unlock()
		log.Info("duplicate broadcast discarded")
		p.observe(models.PipelineDuplicate)
		return models.PipelineResult{Status: models.PipelineDuplicate}, nil
	}
	if _, err := p.store.Insert(ctx, &record); err != nil {
		log.Error("failed to persist broadcast", zap.Error(err))
		result.StoreError = err.Error()
		if p.metrics != nil {
			p.metrics.ObserveStoreError("insert")
		}
	} else {
		result.Persisted = true
		result.RecordID = record.ID
	}
	p.mu.Unlock()

	if err := p.present(ctx, record, pol, false); err != nil {
		log.Error("failed to present alert", zap.Error(err))
		result.PresentError = err.Error()
	} else {
		result.Presented = true
	}

	if pol.Emergency && p.reminders != nil {
		scheduled, err := p.reminders.Schedule(ctx, record, env.Prefs.AlertReminderInterval)
		if err != nil {
			log.Warn("reminder not scheduled", zap.Error(err))
		}
		result.ReminderScheduled = scheduled
	}

	p.observe(models.PipelineProcessed)
	log.Info("broadcast processed",
		zap.Int64("record_id", result.RecordID),
		zap.Bool("emergency", pol.Emergency),
		zap.Bool("reminder", result.ReminderScheduled),
	)
	return result, nil
}

// Replay re-presents a record when its reminder fires. The policy is recomputed so
// configuration changes since the first alert apply.
func (p *AlertPipeline) Replay(ctx context.Context, record models.BroadcastRecord) {
	env := p.env.Load(ctx, record.Slot)
	pol := p.classifier.Policy(record, env)
	if err := p.present(ctx, record, pol, true); err != nil {
		p.logger.Error("failed to present reminder", zap.Int64("broadcast_id", record.ID), zap.Error(err))
	}
}

func (p *AlertPipeline) present(ctx context.Context, record models.BroadcastRecord, pol models.AlertPolicy, reminder bool) error {
	err := p.presenter.Present(ctx, models.PresentationRequest{
		RequestID:     uuid.NewString(),
		Record:        record,
		Policy:        pol,
		FormattedBody: FormatBody(record),
		Reminder:      reminder,
		RequestedAt:   p.now().UTC(),
	})
	if err != nil && p.metrics != nil {
		p.metrics.ObservePresentError()
	}
	return err
}

func (p *AlertPipeline) observe(status models.PipelineStatus) {
	if p.metrics != nil {
		p.metrics.ObservePipeline(status)
	}
}
