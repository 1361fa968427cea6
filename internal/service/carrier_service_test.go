package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	"github.com/noah-isme/cellbroadcast-api/internal/policy"
)

func newTestTable(entries ...string) *policy.Table {
	return policy.NewTable(entries, nil)
}

func TestCarrierServiceRanges(t *testing.T) {
	entries := []string{"4000-4005:type=tsunami", "garbage"}
	table := newTestTable(entries...)
	svc := NewCarrierService(table, entries, models.CarrierFlags{}, nil, nil)

	resp := svc.Ranges()
	require.Len(t, resp.Ranges, 1)
	assert.Equal(t, 4000, resp.Ranges[0].StartID)
	assert.Equal(t, 4005, resp.Ranges[0].EndID)
	assert.Equal(t, entries, resp.Entries)
	require.Len(t, resp.Rejected, 1)
	assert.Equal(t, "garbage", resp.Rejected[0].Entry)

	applied, err := svc.ApplyRanges(dto.ChannelRangesRequest{Entries: []string{"0x1000-0x10FF:always_on=true"}})
	require.NoError(t, err)
	require.Len(t, applied.Ranges, 1)
	assert.True(t, applied.Ranges[0].AlwaysOn)
	assert.Empty(t, applied.Rejected)
	require.Len(t, applied.Effective, 1)
	assert.Contains(t, applied.Effective[0], "0x1000-0x10FF:")
	assert.Contains(t, applied.Effective[0], "always_on=true")

	rule := table.Lookup(policy.Identifier{ServiceCategory: 0x1001, Format: models.MessageFormat3GPP})
	assert.Equal(t, policy.SourceCarrier, rule.Source)
	rule = table.Lookup(policy.Identifier{ServiceCategory: 4001, Format: models.MessageFormat3GPP})
	assert.True(t, rule.IsDefault())

	cleared, err := svc.ApplyRanges(dto.ChannelRangesRequest{})
	require.NoError(t, err)
	assert.Empty(t, cleared.Ranges)
	assert.NotNil(t, cleared.Ranges)
	assert.NotNil(t, cleared.Effective)
}

func TestCarrierServiceFlags(t *testing.T) {
	svc := NewCarrierService(newTestTable(), nil, models.CarrierFlags{AlertToneEnable: true}, nil, nil)
	assert.True(t, svc.Flags().AlertToneEnable)

	svc.SetFlags(models.CarrierFlags{RegionalWEAReminder: true})
	assert.False(t, svc.Flags().AlertToneEnable)
	assert.True(t, svc.Flags().RegionalWEAReminder)
}
