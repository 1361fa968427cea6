package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
)

// MaxAlertSoundDuration caps alert_sound_duration in seconds.
const MaxAlertSoundDuration = 30

type settingRepository interface {
	ListBySlot(ctx context.Context, slot int) ([]models.Setting, error)
	ListByKeys(ctx context.Context, keys []models.SettingKey) ([]models.Setting, error)
	Get(ctx context.Context, key models.SettingKey) (*models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
	BulkUpsert(ctx context.Context, settings []models.Setting) error
}

type settingDefinition struct {
	Name        models.SettingName
	Type        models.SettingType
	Description string
	Default     string
}

var settingCatalog = []settingDefinition{
	{models.SettingEmergencyAlerts, models.SettingTypeBoolean, "Master switch for emergency alerts", "true"},
	{models.SettingPresidentialAlerts, models.SettingTypeBoolean, "Presidential alerts, always on", "true"},
	{models.SettingExtremeThreatAlerts, models.SettingTypeBoolean, "CMAS extreme threat alerts", "true"},
	{models.SettingSevereThreatAlerts, models.SettingTypeBoolean, "CMAS severe threat alerts", "true"},
	{models.SettingAmberAlerts, models.SettingTypeBoolean, "CMAS child abduction alerts", "true"},
	{models.SettingEtwsTestAlerts, models.SettingTypeBoolean, "ETWS test broadcasts", "false"},
	{models.SettingCmasTestAlerts, models.SettingTypeBoolean, "CMAS monthly test, exercise and operator broadcasts", "false"},
	{models.SettingChannel50Alerts, models.SettingTypeBoolean, "Channel 50 area info broadcasts", "false"},
	{models.SettingChannel60Alerts, models.SettingTypeBoolean, "Channel 60 public information broadcasts", "false"},
	{models.SettingGeneralAlerts, models.SettingTypeBoolean, "Audible tone for unclassified broadcasts", "false"},
	{models.SettingAlertVibrate, models.SettingTypeBoolean, "Vibrate on alerts", "true"},
	{models.SettingAlertTone, models.SettingTypeBoolean, "Play alert tone where the region allows opting out", "true"},
	{models.SettingAlertSpeech, models.SettingTypeBoolean, "Speak the alert message", "true"},
	{models.SettingAlertSoundDuration, models.SettingTypeInteger, "Alert tone length in seconds", "4"},
	{models.SettingAlertReminderInterval, models.SettingTypeString, "Reminder interval in minutes: 0 off, 1 once, N repeat", "0"},
	{models.SettingShowCmasOptOutDialog, models.SettingTypeBoolean, "Offer the CMAS opt-out dialog on first alert", "true"},
}

var settingDefinitions = func() map[models.SettingName]settingDefinition {
	out := make(map[models.SettingName]settingDefinition, len(settingCatalog))
	for _, def := range settingCatalog {
		out[def.Name] = def
	}
	return out
}()

// SettingService manages per-slot settings keyed by (setting, slot).
type SettingService struct {
	repo      settingRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingService constructs a SettingService.
func NewSettingService(repo settingRepository, validate *validator.Validate, logger *zap.Logger) *SettingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingService{repo: repo, validator: validate, logger: logger}
}

// List returns every known setting of a slot, stored or defaulted.
func (s *SettingService) List(ctx context.Context, slot int) ([]dto.SettingItem, error) {
	stored, err := s.stored(ctx, slot)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SettingItem, 0, len(settingCatalog))
	for _, def := range settingCatalog {
		item := itemFor(def, slot, def.Default, true)
		if row, ok := stored[def.Name]; ok {
			item.Value = row.Value
			item.Default = false
		}
		items = append(items, item)
	}
	return items, nil
}

// Get retrieves a single setting.
func (s *SettingService) Get(ctx context.Context, name string, slot int) (*dto.SettingItem, error) {
	def, err := requireSetting(name)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.Get(ctx, models.SettingKey{Name: def.Name, Slot: slot})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			item := itemFor(def, slot, def.Default, true)
			return &item, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get setting")
	}
	item := itemFor(def, slot, row.Value, false)
	return &item, nil
}

// Update stores one setting value.
func (s *SettingService) Update(ctx context.Context, req dto.UpdateSettingRequest) (*dto.SettingItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid setting payload")
	}
	def, err := requireSetting(req.Name)
	if err != nil {
		return nil, err
	}
	value, err := normalizeSetting(def, req.Value)
	if err != nil {
		return nil, err
	}

	setting := &models.Setting{Name: def.Name, Slot: req.Slot, Value: value, Type: def.Type, Description: def.Description}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update setting")
	}
	s.logger.Info("setting updated", zap.String("name", string(def.Name)), zap.Int("slot", req.Slot), zap.String("value", value))
	item := itemFor(def, req.Slot, value, false)
	return &item, nil
}

// BulkUpdate applies several updates in one transaction. Nothing is written if any
// item is invalid.
func (s *SettingService) BulkUpdate(ctx context.Context, req dto.BulkUpdateSettingRequest) ([]dto.SettingItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}

	toUpsert := make([]models.Setting, 0, len(req.Items))
	items := make([]dto.SettingItem, 0, len(req.Items))
	for _, item := range req.Items {
		def, err := requireSetting(item.Name)
		if err != nil {
			return nil, err
		}
		value, err := normalizeSetting(def, item.Value)
		if err != nil {
			return nil, err
		}
		toUpsert = append(toUpsert, models.Setting{Name: def.Name, Slot: item.Slot, Value: value, Type: def.Type, Description: def.Description})
		items = append(items, itemFor(def, item.Slot, value, false))
	}

	if err := s.repo.BulkUpsert(ctx, toUpsert); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bulk update settings")
	}
	s.logger.Info("settings updated", zap.Int("count", len(toUpsert)))
	return items, nil
}

// SetBool writes a boolean setting on behalf of the network, bypassing the
// request validator.
func (s *SettingService) SetBool(ctx context.Context, key models.SettingKey, enabled bool) (*dto.SettingItem, error) {
	return s.Update(ctx, dto.UpdateSettingRequest{Name: string(key.Name), Slot: key.Slot, Value: strconv.FormatBool(enabled)})
}

// Snapshot returns the typed preferences of a slot.
func (s *SettingService) Snapshot(ctx context.Context, slot int) (models.Preferences, error) {
	prefs := models.DefaultPreferences(slot)
	stored, err := s.stored(ctx, slot)
	if err != nil {
		return prefs, err
	}

	boolFields := map[models.SettingName]*bool{
		models.SettingEmergencyAlerts:      &prefs.EmergencyAlerts,
		models.SettingExtremeThreatAlerts:  &prefs.ExtremeThreatAlerts,
		models.SettingSevereThreatAlerts:   &prefs.SevereThreatAlerts,
		models.SettingAmberAlerts:          &prefs.AmberAlerts,
		models.SettingEtwsTestAlerts:       &prefs.EtwsTestAlerts,
		models.SettingCmasTestAlerts:       &prefs.CmasTestAlerts,
		models.SettingChannel50Alerts:      &prefs.Channel50Alerts,
		models.SettingChannel60Alerts:      &prefs.Channel60Alerts,
		models.SettingGeneralAlerts:        &prefs.GeneralAlerts,
		models.SettingAlertVibrate:         &prefs.AlertVibrate,
		models.SettingAlertTone:            &prefs.AlertTone,
		models.SettingAlertSpeech:          &prefs.AlertSpeech,
		models.SettingShowCmasOptOutDialog: &prefs.ShowCmasOptOutDialog,
	}
	for name, field := range boolFields {
		row, ok := stored[name]
		if !ok {
			continue
		}
		v, err := strconv.ParseBool(row.Value)
		if err != nil {
			s.logger.Warn("ignoring unreadable setting", zap.String("name", string(name)), zap.String("value", row.Value))
			continue
		}
		*field = v
	}
	if row, ok := stored[models.SettingAlertSoundDuration]; ok {
		if v, err := strconv.Atoi(row.Value); err == nil && v >= 0 {
			prefs.AlertSoundDuration = v
		}
	}
	if row, ok := stored[models.SettingAlertReminderInterval]; ok {
		prefs.AlertReminderInterval = row.Value
	}
	return prefs, nil
}

func (s *SettingService) stored(ctx context.Context, slot int) (map[models.SettingName]models.Setting, error) {
	rows, err := s.repo.ListBySlot(ctx, slot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list settings")
	}
	out := make(map[models.SettingName]models.Setting, len(rows))
	for _, row := range rows {
		out[row.Name] = row
	}
	return out, nil
}

func requireSetting(name string) (settingDefinition, error) {
	def, ok := settingDefinitions[models.SettingName(name)]
	if !ok {
		return settingDefinition{}, appErrors.Clone(appErrors.ErrValidation, "unsupported setting "+name)
	}
	return def, nil
}

func normalizeSetting(def settingDefinition, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch def.Type {
	case models.SettingTypeBoolean:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s expects boolean value", def.Name))
		}
		if def.Name == models.SettingPresidentialAlerts && !v {
			return "", appErrors.Clone(appErrors.ErrValidation, "presidential alerts cannot be disabled")
		}
		return strconv.FormatBool(v), nil
	case models.SettingTypeInteger:
		v, err := strconv.Atoi(value)
		if err != nil || v < 0 || v > MaxAlertSoundDuration {
			return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s expects an integer between 0 and %d", def.Name, MaxAlertSoundDuration))
		}
		return strconv.Itoa(v), nil
	default:
		if def.Name == models.SettingAlertReminderInterval {
			v, err := strconv.Atoi(value)
			if err != nil || v < 0 {
				return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s expects a non-negative number of minutes", def.Name))
			}
			return strconv.Itoa(v), nil
		}
		return value, nil
	}
}

func itemFor(def settingDefinition, slot int, value string, isDefault bool) dto.SettingItem {
	return dto.SettingItem{
		Name:        string(def.Name),
		Slot:        slot,
		Value:       value,
		Type:        string(def.Type),
		Description: def.Description,
		Default:     isDefault,
	}
}
