package service

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	"github.com/noah-isme/cellbroadcast-api/internal/policy"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
)

type rangeTable interface {
	Apply(entries []string) ([]models.ChannelRange, []policy.RejectedRange)
	Ranges() []models.ChannelRange
}

// CarrierService holds the carrier configuration: channel ranges and regional switches.
type CarrierService struct {
	mu        sync.RWMutex
	table     rangeTable
	flags     models.CarrierFlags
	entries   []string
	rejected  []policy.RejectedRange
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCarrierService constructs the service. The table is expected to already hold entries.
func NewCarrierService(table rangeTable, entries []string, flags models.CarrierFlags, validate *validator.Validate, logger *zap.Logger) *CarrierService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	_, rejected := policy.ParseChannelRanges(entries)
	return &CarrierService{
		table:     table,
		flags:     flags,
		entries:   append([]string(nil), entries...),
		rejected:  rejected,
		validator: validate,
		logger:    logger,
	}
}

// Flags returns the carrier switches.
func (s *CarrierService) Flags() models.CarrierFlags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags
}

// SetFlags replaces the carrier switches.
func (s *CarrierService) SetFlags(flags models.CarrierFlags) {
	s.mu.Lock()
	s.flags = flags
	s.mu.Unlock()
	s.logger.Info("carrier flags applied", zap.Any("flags", flags))
}

// Ranges reports the active channel ranges.
func (s *CarrierService) Ranges() dto.ChannelRangesResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.responseLocked(s.table.Ranges())
}

// ApplyRanges replaces the carrier range list. Malformed entries are reported and
// skipped; the rest take effect for subsequent lookups and redisplay.
func (s *CarrierService) ApplyRanges(req dto.ChannelRangesRequest) (*dto.ChannelRangesResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid channel ranges")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ranges, rejected := s.table.Apply(req.Entries)
	s.entries = append([]string(nil), req.Entries...)
	s.rejected = rejected
	resp := s.responseLocked(ranges)
	return &resp, nil
}

func (s *CarrierService) responseLocked(ranges []models.ChannelRange) dto.ChannelRangesResponse {
	resp := dto.ChannelRangesResponse{
		Ranges:    ranges,
		Effective: make([]string, 0, len(ranges)),
		Entries:   append([]string{}, s.entries...),
		Rejected:  make([]dto.RejectedRangeItem, 0, len(s.rejected)),
	}
	if resp.Ranges == nil {
		resp.Ranges = []models.ChannelRange{}
	}
	for _, r := range ranges {
		resp.Effective = append(resp.Effective, policy.FormatChannelRange(r))
	}
	for _, r := range s.rejected {
		resp.Rejected = append(resp.Rejected, dto.RejectedRangeItem{Entry: r.Entry, Reason: r.Reason})
	}
	return resp
}
