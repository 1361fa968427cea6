package policy

import "github.com/noah-isme/cellbroadcast-api/internal/models"

// GSM message identifiers with fixed meaning.
const (
	MessageIDEtwsEarthquake           = 0x1100
	MessageIDEtwsTsunami              = 0x1101
	MessageIDEtwsEarthquakeAndTsunami = 0x1102
	MessageIDEtwsTest                 = 0x1103
	MessageIDEtwsOther                = 0x1104
	MessageIDCmasPresidential         = 0x1112
	MessageIDCmasExtremeFirst         = 0x1113
	MessageIDCmasExtremeLast          = 0x1116
	MessageIDCmasSevereFirst          = 0x1117
	MessageIDCmasSevereLast           = 0x111A
	MessageIDCmasChildAbduction       = 0x111B
	MessageIDCmasMonthlyTest          = 0x111C
	MessageIDCmasExercise             = 0x111D
	MessageIDCmasOperatorDefined      = 0x111E
)

// CDMA service categories with fixed meaning.
const (
	CdmaCategoryPresidential   = 0x1000
	CdmaCategoryExtreme        = 0x1001
	CdmaCategorySevere         = 0x1002
	CdmaCategoryChildAbduction = 0x1003
	CdmaCategoryTest           = 0x1004
)

// Built-in non-emergency channels gated by per-slot settings.
const (
	Channel50 = 50
	Channel60 = 60
)

// Rule sources reported on matches.
const (
	SourceBuiltin = "builtin"
	SourceCarrier = "carrier"
	SourceCustom  = "custom"
	SourceDefault = "default"
)

var etwsByMessageID = map[int]models.EtwsWarningType{
	MessageIDEtwsEarthquake:           models.EtwsWarningEarthquake,
	MessageIDEtwsTsunami:              models.EtwsWarningTsunami,
	MessageIDEtwsEarthquakeAndTsunami: models.EtwsWarningEarthquakeAndTsunami,
	MessageIDEtwsTest:                 models.EtwsWarningTest,
	MessageIDEtwsOther:                models.EtwsWarningOther,
}

var cmasByMessageID = map[int]models.CmasMessageClass{
	MessageIDCmasPresidential:    models.CmasClassPresidential,
	MessageIDCmasChildAbduction:  models.CmasClassChildAbduction,
	MessageIDCmasMonthlyTest:     models.CmasClassMonthlyTest,
	MessageIDCmasExercise:        models.CmasClassExercise,
	MessageIDCmasOperatorDefined: models.CmasClassOperatorDefined,
}

var cmasByCdmaCategory = map[int]models.CmasMessageClass{
	CdmaCategoryPresidential:   models.CmasClassPresidential,
	CdmaCategoryExtreme:        models.CmasClassExtremeThreat,
	CdmaCategorySevere:         models.CmasClassSevereThreat,
	CdmaCategoryChildAbduction: models.CmasClassChildAbduction,
	CdmaCategoryTest:           models.CmasClassMonthlyTest,
}

// threat ids come in blocks of four: (immediate, observed), (immediate, likely),
// (expected, observed), (expected, likely).
var threatQualifiers = [4]struct {
	urgency   models.CmasUrgency
	certainty models.CmasCertainty
}{
	{models.CmasUrgencyImmediate, models.CmasCertaintyObserved},
	{models.CmasUrgencyImmediate, models.CmasCertaintyLikely},
	{models.CmasUrgencyExpected, models.CmasCertaintyObserved},
	{models.CmasUrgencyExpected, models.CmasCertaintyLikely},
}

// BuiltinInfo maps a built-in identifier to its ETWS or CMAS info.
// Both results are nil when the identifier is not built in.
func BuiltinInfo(format models.MessageFormat, serviceCategory int) (*models.EtwsInfo, *models.CmasInfo) {
	if format == models.MessageFormat3GPP2 {
		if class, ok := cmasByCdmaCategory[serviceCategory]; ok {
			info := models.UnknownCmasInfo(class)
			return nil, &info
		}
		return nil, nil
	}
	return LegacyInfo(serviceCategory)
}

// LegacyInfo maps a GSM message id to ETWS or CMAS info.
func LegacyInfo(messageID int) (*models.EtwsInfo, *models.CmasInfo) {
	if warning, ok := etwsByMessageID[messageID]; ok {
		return &models.EtwsInfo{WarningType: warning}, nil
	}
	if class, ok := cmasByMessageID[messageID]; ok {
		info := models.UnknownCmasInfo(class)
		return nil, &info
	}
	switch {
	case messageID >= MessageIDCmasExtremeFirst && messageID <= MessageIDCmasExtremeLast:
		info := threatInfo(models.CmasClassExtremeThreat, models.CmasSeverityExtreme, messageID-MessageIDCmasExtremeFirst)
		return nil, &info
	case messageID >= MessageIDCmasSevereFirst && messageID <= MessageIDCmasSevereLast:
		info := threatInfo(models.CmasClassSevereThreat, models.CmasSeveritySevere, messageID-MessageIDCmasSevereFirst)
		return nil, &info
	}
	return nil, nil
}

func threatInfo(class models.CmasMessageClass, severity models.CmasSeverity, offset int) models.CmasInfo {
	info := models.UnknownCmasInfo(class)
	info.Severity = severity
	info.Urgency = threatQualifiers[offset].urgency
	info.Certainty = threatQualifiers[offset].certainty
	return info
}

// LegacySerial rebuilds a serial number from the legacy split encoding.
func LegacySerial(geoScope, messageCode, updateNumber int) int {
	return ((geoScope & 0x03) << 14) | ((messageCode & 0x3ff) << 4) | (updateNumber & 0x0f)
}

func etwsRule(warning models.EtwsWarningType) Rule {
	tone := models.ToneOther
	switch warning {
	case models.EtwsWarningEarthquake:
		tone = models.ToneEarthquake
	case models.EtwsWarningTsunami:
		tone = models.ToneTsunami
	case models.EtwsWarningEarthquakeAndTsunami:
		tone = models.ToneEarthquakeAndTsunami
	case models.EtwsWarningTest:
		tone = models.ToneTest
	}
	return Rule{ToneType: tone, Emergency: true, Source: SourceBuiltin, ForceVibrate: true}
}

func cmasRule(class models.CmasMessageClass) Rule {
	rule := Rule{ToneType: models.ToneCMASDefault, Emergency: true, Source: SourceBuiltin}
	switch class {
	case models.CmasClassPresidential:
		rule.ToneType = models.TonePresidential
		rule.AlwaysOn = true
		rule.ForceVibrate = true
	case models.CmasClassMonthlyTest, models.CmasClassExercise:
		rule.ToneType = models.ToneTest
	}
	return rule
}

func channelRule(channel int) (Rule, bool) {
	switch channel {
	case Channel50:
		return Rule{ToneType: models.ToneNone, Name: "Area info", Source: SourceBuiltin}, true
	case Channel60:
		return Rule{ToneType: models.ToneNone, Name: "Public information", Source: SourceBuiltin}, true
	}
	return Rule{}, false
}
