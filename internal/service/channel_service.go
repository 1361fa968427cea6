package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	"github.com/noah-isme/cellbroadcast-api/internal/policy"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
)

type channelRepository interface {
	List(ctx context.Context, slot int) ([]models.CustomChannel, error)
	FindByChannel(ctx context.Context, slot, channel int) (*models.CustomChannel, error)
	FindByID(ctx context.Context, id int64) (*models.CustomChannel, error)
	Create(ctx context.Context, ch *models.CustomChannel) error
	Update(ctx context.Context, ch *models.CustomChannel) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type settingWriter interface {
	SetBool(ctx context.Context, key models.SettingKey, enabled bool) (*dto.SettingItem, error)
}

// SCPD categories and the settings they toggle. Presidential is absent on purpose:
// it can never be disabled.
var cdmaProgramSettings = map[int]models.SettingName{
	policy.CdmaCategoryExtreme:        models.SettingExtremeThreatAlerts,
	policy.CdmaCategorySevere:         models.SettingSevereThreatAlerts,
	policy.CdmaCategoryChildAbduction: models.SettingAmberAlerts,
	policy.CdmaCategoryTest:           models.SettingCmasTestAlerts,
}

var cdmaProgramOrder = []int{
	policy.CdmaCategoryExtreme,
	policy.CdmaCategorySevere,
	policy.CdmaCategoryChildAbduction,
	policy.CdmaCategoryTest,
}

// ChannelService manages custom channels and network channel programming.
type ChannelService struct {
	repo      channelRepository
	settings  settingWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChannelService constructs a ChannelService.
func NewChannelService(repo channelRepository, settings settingWriter, validate *validator.Validate, logger *zap.Logger) *ChannelService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChannelService{repo: repo, settings: settings, validator: validate, logger: logger}
}

// List returns the custom channels of a slot.
func (s *ChannelService) List(ctx context.Context, slot int) ([]models.CustomChannel, error) {
	channels, err := s.repo.List(ctx, slot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list channels")
	}
	return channels, nil
}

// Create adds a custom channel. Channel numbers are unique per slot.
func (s *ChannelService) Create(ctx context.Context, req dto.CreateChannelRequest) (*models.CustomChannel, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid channel payload")
	}
	if err := s.ensureFree(ctx, req.Slot, req.Channel, 0); err != nil {
		return nil, err
	}
	ch := &models.CustomChannel{Slot: req.Slot, Name: req.Name, Channel: req.Channel, Enabled: true}
	if req.Enabled != nil {
		ch.Enabled = *req.Enabled
	}
	if err := s.repo.Create(ctx, ch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create channel")
	}
	s.logger.Info("custom channel added", zap.Int64("id", ch.ID), zap.Int("channel", ch.Channel), zap.Int("slot", ch.Slot))
	return ch, nil
}

// Update changes a custom channel.
func (s *ChannelService) Update(ctx context.Context, id int64, req dto.UpdateChannelRequest) (*models.CustomChannel, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid channel payload")
	}
	ch, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Channel != nil && *req.Channel != ch.Channel {
		if err := s.ensureFree(ctx, ch.Slot, *req.Channel, ch.ID); err != nil {
			return nil, err
		}
		ch.Channel = *req.Channel
	}
	if req.Name != nil {
		ch.Name = *req.Name
	}
	if req.Enabled != nil {
		ch.Enabled = *req.Enabled
	}
	ok, err := s.repo.Update(ctx, ch)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update channel")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "channel not found")
	}
	return ch, nil
}

// Delete removes a custom channel.
func (s *ChannelService) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete channel")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "channel not found")
	}
	return nil
}

// ApplyCdmaProgram applies Service Category Program Data: add enables the
// category's setting, delete disables it and clear_all disables every
// programmable category. Unknown and presidential categories are ignored.
func (s *ChannelService) ApplyCdmaProgram(ctx context.Context, req dto.CdmaProgramRequest) (*dto.CdmaProgramResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program data")
	}

	resp := &dto.CdmaProgramResponse{Updated: []dto.SettingItem{}, Ignored: []int{}}
	apply := func(category int, enabled bool) error {
		name := cdmaProgramSettings[category]
		item, err := s.settings.SetBool(ctx, models.SettingKey{Name: name, Slot: req.Slot}, enabled)
		if err != nil {
			return err
		}
		resp.Updated = append(resp.Updated, *item)
		return nil
	}

	for _, item := range req.Items {
		op := models.CdmaProgramOperation(item.Operation)
		if op == models.CdmaProgramClearAll {
			for _, category := range cdmaProgramOrder {
				if err := apply(category, false); err != nil {
					return nil, err
				}
			}
			continue
		}
		if _, ok := cdmaProgramSettings[item.Category]; !ok {
			s.logger.Info("ignoring program data category", zap.Int("category", item.Category), zap.String("operation", item.Operation))
			resp.Ignored = append(resp.Ignored, item.Category)
			continue
		}
		if err := apply(item.Category, op == models.CdmaProgramAdd); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (s *ChannelService) find(ctx context.Context, id int64) (*models.CustomChannel, error) {
	ch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "channel not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load channel")
	}
	return ch, nil
}

func (s *ChannelService) ensureFree(ctx context.Context, slot, channel int, self int64) error {
	existing, err := s.repo.FindByChannel(ctx, slot, channel)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check channel")
	}
	if existing.ID != self {
		return appErrors.Clone(appErrors.ErrConflict, "channel already configured for slot")
	}
	return nil
}
