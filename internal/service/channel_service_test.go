package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	"github.com/noah-isme/cellbroadcast-api/internal/policy"
	"github.com/noah-isme/cellbroadcast-api/internal/repository"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
)

func newChannelFixture(t *testing.T) (*ChannelService, *SettingService) {
	t.Helper()
	db := newServiceDB(t)
	settings := NewSettingService(repository.NewSettingRepository(db), nil, nil)
	return NewChannelService(repository.NewChannelRepository(db), settings, nil, nil), settings
}

func TestChannelServiceLifecycle(t *testing.T) {
	svc, _ := newChannelFixture(t)
	ctx := context.Background()

	disabled := false
	weather, err := svc.Create(ctx, dto.CreateChannelRequest{Slot: 0, Name: "Weather", Channel: 919})
	require.NoError(t, err)
	assert.True(t, weather.Enabled)
	traffic, err := svc.Create(ctx, dto.CreateChannelRequest{Slot: 0, Name: "Traffic", Channel: 920, Enabled: &disabled})
	require.NoError(t, err)
	assert.False(t, traffic.Enabled)

	_, err = svc.Create(ctx, dto.CreateChannelRequest{Slot: 0, Name: "Again", Channel: 919})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	_, err = svc.Create(ctx, dto.CreateChannelRequest{Slot: 1, Name: "Other slot", Channel: 919})
	assert.NoError(t, err)
	_, err = svc.Create(ctx, dto.CreateChannelRequest{Slot: 0, Channel: 1})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	clash := 919
	_, err = svc.Update(ctx, traffic.ID, dto.UpdateChannelRequest{Channel: &clash})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	name, enabled := "Road traffic", true
	updated, err := svc.Update(ctx, traffic.ID, dto.UpdateChannelRequest{Name: &name, Enabled: &enabled})
	require.NoError(t, err)
	assert.Equal(t, "Road traffic", updated.Name)
	assert.True(t, updated.Enabled)
	assert.Equal(t, 920, updated.Channel)

	_, err = svc.Update(ctx, 404, dto.UpdateChannelRequest{Name: &name})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	channels, err := svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, []int{919, 920}, []int{channels[0].Channel, channels[1].Channel})

	require.NoError(t, svc.Delete(ctx, weather.ID))
	assert.ErrorIs(t, svc.Delete(ctx, weather.ID), appErrors.ErrNotFound)
}

func TestChannelServiceCdmaProgram(t *testing.T) {
	svc, settings := newChannelFixture(t)
	ctx := context.Background()

	resp, err := svc.ApplyCdmaProgram(ctx, dto.CdmaProgramRequest{Slot: 0, Items: []dto.CdmaProgramItem{
		{Operation: "delete", Category: policy.CdmaCategoryExtreme},
		{Operation: "delete", Category: policy.CdmaCategoryPresidential},
		{Operation: "add", Category: policy.CdmaCategoryTest},
		{Operation: "delete", Category: 0x0042},
	}})
	require.NoError(t, err)
	assert.Len(t, resp.Updated, 2)
	assert.Equal(t, []int{policy.CdmaCategoryPresidential, 0x0042}, resp.Ignored)

	prefs, err := settings.Snapshot(ctx, 0)
	require.NoError(t, err)
	assert.False(t, prefs.ExtremeThreatAlerts)
	assert.True(t, prefs.CmasTestAlerts)
	assert.True(t, prefs.SevereThreatAlerts)

	resp, err = svc.ApplyCdmaProgram(ctx, dto.CdmaProgramRequest{Slot: 0, Items: []dto.CdmaProgramItem{{Operation: "clear_all"}}})
	require.NoError(t, err)
	assert.Len(t, resp.Updated, len(cdmaProgramOrder))

	prefs, err = settings.Snapshot(ctx, 0)
	require.NoError(t, err)
	assert.False(t, prefs.SevereThreatAlerts)
	assert.False(t, prefs.AmberAlerts)
	assert.False(t, prefs.CmasTestAlerts)
	assert.True(t, prefs.EmergencyAlerts)

	item, err := settings.Get(ctx, string(models.SettingPresidentialAlerts), 0)
	require.NoError(t, err)
	assert.Equal(t, "true", item.Value)

	_, err = svc.ApplyCdmaProgram(ctx, dto.CdmaProgramRequest{Items: []dto.CdmaProgramItem{{Operation: "toggle"}}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
