package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
	"github.com/noah-isme/cellbroadcast-api/pkg/jobs"
)

const ingestJobType = "broadcast"

type broadcastProcessor interface {
	Process(ctx context.Context, raw models.RawBroadcast) (models.PipelineResult, error)
}

// IngestConfig tunes the ingest queue.
type IngestConfig struct {
	BufferSize     int
	ProcessTimeout time.Duration
	// Observe, when set, receives queue wait and processing time of each broadcast.
	Observe func(wait, run time.Duration)
}

type ingestPayload struct {
	raw    models.RawBroadcast
	result chan ingestOutcome
}

type ingestOutcome struct {
	result models.PipelineResult
	err    error
}

// IngestService serializes arriving broadcasts through a single-worker queue so
// the pipeline handles exactly one broadcast at a time.
type IngestService struct {
	pipeline  broadcastProcessor
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
	cfg       IngestConfig
	now       func() time.Time
}

// NewIngestService constructs the service. Call Start before Ingest.
func NewIngestService(pipeline broadcastProcessor, validate *validator.Validate, logger *zap.Logger, cfg IngestConfig) *IngestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProcessTimeout <= 0 {
		cfg.ProcessTimeout = 10 * time.Second
	}
	s := &IngestService{
		pipeline:  pipeline,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
	var observe func(jobs.Outcome)
	if cfg.Observe != nil {
		observe = func(o jobs.Outcome) { cfg.Observe(o.Wait, o.Run) }
	}
	s.queue = jobs.NewQueue("ingest", s.handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.BufferSize,
		JobTimeout: cfg.ProcessTimeout,
		Observe:    observe,
		Logger:     logger,
	})
	return s
}

// Start launches the worker.
func (s *IngestService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop refuses new broadcasts, lets queued ones finish until ctx expires and
// then stops the worker.
func (s *IngestService) Stop(ctx context.Context) error {
	err := s.queue.Drain(ctx)
	s.queue.Stop()
	return err
}

// Pending returns the number of broadcasts waiting for the worker.
func (s *IngestService) Pending() int {
	return s.queue.Len()
}

// Ingest validates a decoded broadcast, queues it and waits for the pipeline outcome.
func (s *IngestService) Ingest(ctx context.Context, req dto.IngestBroadcastRequest) (*models.PipelineResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid broadcast payload")
	}
	if req.Etws != nil && req.Cmas != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "broadcast cannot carry both etws and cmas info")
	}

	payload := ingestPayload{raw: req.ToModel(s.now()), result: make(chan ingestOutcome, 1)}
	if err := s.queue.EnqueueContext(ctx, jobs.Job{Type: ingestJobType, Payload: payload}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrQueueUnavailable.Code, appErrors.ErrQueueUnavailable.Status, "broadcast not queued")
	}

	select {
	case outcome := <-payload.result:
		if outcome.err != nil {
			return nil, appErrors.Wrap(outcome.err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "broadcast processing failed")
		}
		return &outcome.result, nil
	case <-ctx.Done():
		return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrQueueUnavailable.Code, appErrors.ErrQueueUnavailable.Status, "gave up waiting for broadcast processing")
	}
}

func (s *IngestService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(ingestPayload)
	if !ok {
		return fmt.Errorf("unexpected ingest payload %T", job.Payload)
	}
	result, err := s.pipeline.Process(ctx, payload.raw)
	payload.result <- ingestOutcome{result: result, err: err}
	return nil
}
