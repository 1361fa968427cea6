package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	"github.com/noah-isme/cellbroadcast-api/internal/repository"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
)

const (
	defaultBroadcastPageSize = 20
	maxBroadcastPageSize     = 200
)

type broadcastRepository interface {
	Get(ctx context.Context, id int64) (*models.BroadcastRecord, error)
	List(ctx context.Context, filter repository.BroadcastFilter) ([]models.BroadcastRecord, int, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id int64) (bool, error)
	MarkReadByDeliveryTime(ctx context.Context, deliveredAt time.Time) (int64, error)
	MarkDeleted(ctx context.Context, id int64, now time.Time) (bool, error)
	MarkAllDeleted(ctx context.Context, now time.Time) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	PurgeExpiredSoftDeleted(ctx context.Context, now time.Time) (int64, error)
}

type storeMetrics interface {
	ObserveStoreError(op string)
}

// BroadcastService exposes the alert history.
type BroadcastService struct {
	repo       broadcastRepository
	classifier *Classifier
	env        environmentSource
	metrics    storeMetrics
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewBroadcastService constructs a BroadcastService.
func NewBroadcastService(repo broadcastRepository, classifier *Classifier, env environmentSource, metrics storeMetrics, validate *validator.Validate, logger *zap.Logger) *BroadcastService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BroadcastService{
		repo:       repo,
		classifier: classifier,
		env:        env,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns a page of history.
func (s *BroadcastService) List(ctx context.Context, filter dto.BroadcastFilter) ([]models.BroadcastRecord, *models.Pagination, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid filter")
	}
	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultBroadcastPageSize
	}
	if size > maxBroadcastPageSize {
		size = maxBroadcastPageSize
	}

	records, total, err := s.repo.List(ctx, repository.BroadcastFilter{
		Page:              page,
		PageSize:          size,
		PresidentialFirst: filter.PresidentialFirst,
		IncludeDeleted:    filter.IncludeDeleted,
		Slot:              filter.Slot,
	})
	if err != nil {
		return nil, nil, s.storeError("list", err, "failed to list broadcasts")
	}
	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one record with its policy recomputed under the current configuration.
func (s *BroadcastService) Get(ctx context.Context, id int64) (*dto.BroadcastDetail, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "broadcast not found")
		}
		return nil, s.storeError("get", err, "failed to get broadcast")
	}
	env := s.env.Load(ctx, record.Slot)
	return &dto.BroadcastDetail{
		BroadcastRecord: *record,
		Policy:          s.classifier.Policy(*record, env),
		FormattedBody:   FormatBody(*record),
	}, nil
}

// UnreadCount counts unread visible records.
func (s *BroadcastService) UnreadCount(ctx context.Context) (int, error) {
	n, err := s.repo.UnreadCount(ctx)
	if err != nil {
		return 0, s.storeError("unread_count", err, "failed to count unread broadcasts")
	}
	return n, nil
}

// MarkRead marks one record read.
func (s *BroadcastService) MarkRead(ctx context.Context, id int64) error {
	ok, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return s.storeError("mark_read", err, "failed to mark broadcast read")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "broadcast not found")
	}
	return nil
}

// MarkReadByTime marks every record delivered at the given instant read.
func (s *BroadcastService) MarkReadByTime(ctx context.Context, req dto.MarkReadByTimeRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	n, err := s.repo.MarkReadByDeliveryTime(ctx, req.DeliveryTime)
	if err != nil {
		return 0, s.storeError("mark_read", err, "failed to mark broadcasts read")
	}
	return n, nil
}

// Delete soft-deletes one record.
func (s *BroadcastService) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.MarkDeleted(ctx, id, s.now())
	if err != nil {
		return s.storeError("mark_deleted", err, "failed to delete broadcast")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "broadcast not found")
	}
	return nil
}

// DeleteAll soft-deletes every record, or removes all rows when hard is set.
func (s *BroadcastService) DeleteAll(ctx context.Context, hard bool) (int64, error) {
	if hard {
		n, err := s.repo.DeleteAll(ctx)
		if err != nil {
			return 0, s.storeError("delete_all", err, "failed to delete broadcasts")
		}
		s.logger.Info("broadcast history cleared", zap.Int64("rows", n))
		return n, nil
	}
	n, err := s.repo.MarkAllDeleted(ctx, s.now())
	if err != nil {
		return 0, s.storeError("mark_deleted", err, "failed to delete broadcasts")
	}
	return n, nil
}

// Purge hard-deletes soft-deleted records past the retention window.
func (s *BroadcastService) Purge(ctx context.Context) (int64, error) {
	n, err := s.repo.PurgeExpiredSoftDeleted(ctx, s.now())
	if err != nil {
		return 0, s.storeError("purge", err, "failed to purge broadcasts")
	}
	if n > 0 {
		s.logger.Info("expired broadcasts purged", zap.Int64("rows", n))
	}
	return n, nil
}

func (s *BroadcastService) storeError(op string, err error, message string) error {
	s.logger.Error("broadcast store failure", zap.String("op", op), zap.Error(err))
	if s.metrics != nil {
		s.metrics.ObserveStoreError(op)
	}
	return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, message)
}
