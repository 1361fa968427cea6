package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
)

func TestLookupBuiltinBeatsCarrierRanges(t *testing.T) {
	table := NewTable([]string{"0x1100-0x1200:type=none,emergency=false"}, nil)

	rule := table.Lookup(Identifier{ServiceCategory: MessageIDEtwsTsunami, Format: models.MessageFormat3GPP})
	assert.Equal(t, SourceBuiltin, rule.Source)
	assert.Equal(t, models.ToneTsunami, rule.ToneType)
	assert.True(t, rule.Emergency)
	assert.True(t, rule.ForceVibrate)

	rule = table.Lookup(Identifier{ServiceCategory: 0x1150, Format: models.MessageFormat3GPP})
	assert.Equal(t, SourceCarrier, rule.Source)
	assert.False(t, rule.Emergency)
	require.NotNil(t, rule.Range)
	assert.Equal(t, 0x1100, rule.Range.StartID)
}

func TestLookupFirstCarrierMatchWins(t *testing.T) {
	table := NewTable([]string{"100-200:type=tsunami", "150:type=earthquake"}, nil)

	rule := table.Lookup(Identifier{ServiceCategory: 150})
	assert.Equal(t, models.ToneTsunami, rule.ToneType)
}

func TestLookupDefaultRule(t *testing.T) {
	table := NewTable(nil, nil)

	rule := table.Lookup(Identifier{ServiceCategory: 999})
	assert.True(t, rule.IsDefault())
	assert.Equal(t, models.ToneNone, rule.ToneType)
	assert.False(t, rule.Emergency)
}

func TestLookupPresidentialIsAlwaysOn(t *testing.T) {
	table := NewTable(nil, nil)

	gsm := table.Lookup(Identifier{ServiceCategory: MessageIDCmasPresidential})
	cdma := table.Lookup(Identifier{ServiceCategory: CdmaCategoryPresidential, Format: models.MessageFormat3GPP2})
	explicit := table.Lookup(Identifier{ServiceCategory: 4242, Cmas: &models.CmasInfo{MessageClass: models.CmasClassPresidential}})

	for _, rule := range []Rule{gsm, cdma, explicit} {
		assert.Equal(t, models.TonePresidential, rule.ToneType)
		assert.True(t, rule.AlwaysOn)
		assert.True(t, rule.Emergency)
	}
}

func TestLookupCdmaCategoryNotMatchedAsGSM(t *testing.T) {
	table := NewTable(nil, nil)

	rule := table.Lookup(Identifier{ServiceCategory: Channel50, Format: models.MessageFormat3GPP2})
	assert.True(t, rule.IsDefault())

	rule = table.Lookup(Identifier{ServiceCategory: Channel50, Format: models.MessageFormat3GPP})
	assert.Equal(t, SourceBuiltin, rule.Source)
	assert.False(t, rule.Emergency)
}

func TestApplyLogsRejectedAndSwaps(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	table := NewTable([]string{"10"}, zap.New(core))

	accepted, rejected := table.Apply([]string{"20-30", "bogus"})
	assert.Len(t, accepted, 1)
	assert.Len(t, rejected, 1)
	assert.Equal(t, 1, logs.FilterMessage("skipping malformed channel range").Len())

	ranges := table.Ranges()
	require.Len(t, ranges, 1)
	assert.Equal(t, 20, ranges[0].StartID)
	assert.True(t, table.Lookup(Identifier{ServiceCategory: 10}).IsDefault())
}

func TestLegacyInfoThreatQualifiers(t *testing.T) {
	_, cmas := LegacyInfo(0x1115)
	require.NotNil(t, cmas)
	assert.Equal(t, models.CmasClassExtremeThreat, cmas.MessageClass)
	assert.Equal(t, models.CmasSeverityExtreme, cmas.Severity)
	assert.Equal(t, models.CmasUrgencyExpected, cmas.Urgency)
	assert.Equal(t, models.CmasCertaintyObserved, cmas.Certainty)
	assert.Equal(t, models.CmasCategoryUnknown, cmas.Category)

	_, cmas = LegacyInfo(0x1118)
	require.NotNil(t, cmas)
	assert.Equal(t, models.CmasClassSevereThreat, cmas.MessageClass)
	assert.Equal(t, models.CmasUrgencyImmediate, cmas.Urgency)
	assert.Equal(t, models.CmasCertaintyLikely, cmas.Certainty)

	etws, cmas := LegacyInfo(MessageIDEtwsEarthquakeAndTsunami)
	require.NotNil(t, etws)
	assert.Nil(t, cmas)
	assert.Equal(t, models.EtwsWarningEarthquakeAndTsunami, etws.WarningType)

	etws, cmas = LegacyInfo(4370 + 1000)
	assert.Nil(t, etws)
	assert.Nil(t, cmas)
}

func TestLegacySerial(t *testing.T) {
	assert.Equal(t, (3<<14)|(0x3ff<<4)|0xf, LegacySerial(3, 0x3ff, 0xf))
	assert.Equal(t, (1<<14)|(5<<4)|2, LegacySerial(1, 5, 2))
	assert.Equal(t, 0x0f, LegacySerial(4, 0x400, 0x1f))
}
