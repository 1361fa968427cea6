package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
)

type preferenceSource interface {
	Snapshot(ctx context.Context, slot int) (models.Preferences, error)
}

type carrierSource interface {
	Flags() models.CarrierFlags
}

type customChannelSource interface {
	List(ctx context.Context, slot int) ([]models.CustomChannel, error)
}

// EnvironmentLoader assembles the AlertEnvironment of a slot. Failures to read
// settings or channels fall back to defaults so alerts are never blocked.
type EnvironmentLoader struct {
	prefs    preferenceSource
	carrier  carrierSource
	channels customChannelSource
	logger   *zap.Logger
}

// NewEnvironmentLoader constructs an EnvironmentLoader. Any source may be nil.
func NewEnvironmentLoader(prefs preferenceSource, carrier carrierSource, channels customChannelSource, logger *zap.Logger) *EnvironmentLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnvironmentLoader{prefs: prefs, carrier: carrier, channels: channels, logger: logger}
}

// Load returns the environment of slot.
func (l *EnvironmentLoader) Load(ctx context.Context, slot int) AlertEnvironment {
	env := AlertEnvironment{Prefs: models.DefaultPreferences(slot)}
	if l.prefs != nil {
		prefs, err := l.prefs.Snapshot(ctx, slot)
		if err != nil {
			l.logger.Warn("using default preferences", zap.Int("slot", slot), zap.Error(err))
		} else {
			env.Prefs = prefs
		}
	}
	if l.carrier != nil {
		env.Carrier = l.carrier.Flags()
	}
	if l.channels != nil {
		channels, err := l.channels.List(ctx, slot)
		if err != nil {
			l.logger.Warn("custom channels unavailable", zap.Int("slot", slot), zap.Error(err))
		} else {
			env.Channels = channels
		}
	}
	return env
}
