package service

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
	"github.com/noah-isme/cellbroadcast-api/internal/policy"
)

// CmasAlertDuration is the fixed audio length of CMAS alerts.
const CmasAlertDuration = 10500 * time.Millisecond

const (
	etwsSpeechLanguage = "ja"
	cmasSpeechLanguage = "en"
)

type policyTable interface {
	Lookup(id policy.Identifier) policy.Rule
}

// AlertEnvironment is everything besides the broadcast that shapes its policy.
type AlertEnvironment struct {
	Prefs    models.Preferences
	Carrier  models.CarrierFlags
	Channels []models.CustomChannel
}

// Classifier derives stored records and alert policies from raw broadcasts.
// It holds no mutable state of its own.
type Classifier struct {
	table  policyTable
	logger *zap.Logger
	now    func() time.Time
}

// NewClassifier constructs a Classifier.
func NewClassifier(table policyTable, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{table: table, logger: logger, now: time.Now}
}

// Classify turns a raw broadcast into its record and policy.
func (c *Classifier) Classify(raw models.RawBroadcast, env AlertEnvironment) (models.BroadcastRecord, models.AlertPolicy) {
	record := c.Record(raw)
	return record, c.Policy(record, env)
}

// Record builds the record that would be stored for raw. Location fields unused by
// the geographical scope become unknown and missing ETWS or CMAS info is derived
// from the built-in identifier table.
func (c *Classifier) Record(raw models.RawBroadcast) models.BroadcastRecord {
	record := models.BroadcastRecord{
		Slot:              raw.Slot,
		GeographicalScope: raw.GeographicalScope,
		SerialNumber:      raw.SerialNumber & 0xFFFF,
		Location:          raw.Location.Scoped(raw.GeographicalScope),
		ServiceCategory:   raw.ServiceCategory,
		Language:          raw.Language,
		Body:              raw.Body,
		Format:            raw.Format,
		Priority:          raw.Priority,
	}
	if raw.Etws != nil {
		etws := *raw.Etws
		record.Etws = &etws
	}
	if raw.Cmas != nil {
		cmas := *raw.Cmas
		record.Cmas = &cmas
	}
	if record.Etws == nil && record.Cmas == nil {
		record.Etws, record.Cmas = policy.BuiltinInfo(raw.Format, raw.ServiceCategory)
	}
	if record.Etws != nil || record.Cmas != nil {
		record.Priority = models.PriorityEmergency
	}

	delivered := raw.ReceivedAt
	if delivered.IsZero() {
		delivered = c.now()
	}
	record.DeliveryTime = delivered.UTC().Truncate(time.Millisecond)
	return record
}

// Policy recomputes the alert policy of a record under the current environment.
func (c *Classifier) Policy(record models.BroadcastRecord, env AlertEnvironment) models.AlertPolicy {
	rule := c.table.Lookup(policy.Identifier{
		ServiceCategory: record.ServiceCategory,
		Format:          record.Format,
		Etws:            record.Etws,
		Cmas:            record.Cmas,
	})

	source, name := rule.Source, rule.Name
	if rule.IsDefault() {
		if ch := customChannel(env.Channels, record.Slot, record.ServiceCategory); ch != nil {
			source, name = policy.SourceCustom, ch.Name
		}
	}

	publicAlert := record.IsPublicAlert() || rule.Emergency
	emergency := publicAlert && record.CmasClass() != models.CmasClassChildAbduction

	tone := rule.ToneType
	generalTone := rule.IsDefault() && env.Prefs.GeneralAlerts
	if generalTone {
		tone = models.ToneOther
	}

	out := models.AlertPolicy{
		Emergency:       emergency,
		ToneType:        tone,
		PlayTone:        (emergency || generalTone) && tone != models.ToneNone,
		Vibrate:         env.Prefs.AlertVibrate,
		ForceVibrate:    rule.ForceVibrate,
		SpeechEnabled:   emergency && env.Prefs.AlertSpeech,
		SpeechLanguage:  c.speechLanguage(record),
		DialogTitle:     DialogTitleFor(record.Etws, record.Cmas, emergency),
		DisplayName:     name,
		AlwaysOn:        rule.AlwaysOn,
		AlertDuration:   time.Duration(env.Prefs.AlertSoundDuration) * time.Second,
		PolicySource:    source,
		ServiceCategory: record.ServiceCategory,
	}
	if env.Carrier.AlertToneEnable && !env.Prefs.AlertTone {
		out.PlayTone = false
	}

	switch {
	case record.IsEtws():
		if env.Carrier.PresidentialToneVibrate {
			out.ForceVibrate = false
		}
	case record.IsPresidential() && env.Carrier.PresidentialToneVibrate:
		out.PlayTone = true
		out.ForceVibrate = true
	}
	if out.ForceVibrate {
		out.Vibrate = true
	}

	if record.IsCmas() {
		out.AlertDuration = CmasAlertDuration
	}
	return out
}

// Allowed applies the user and carrier filters. Presidential alerts always pass.
func (c *Classifier) Allowed(record models.BroadcastRecord, pol models.AlertPolicy, env AlertEnvironment) (bool, string) {
	prefs, carrier := env.Prefs, env.Carrier

	if record.IsPresidential() {
		return true, ""
	}
	if record.IsEtws() {
		if record.Etws.WarningType != models.EtwsWarningTest {
			return true, ""
		}
		if carrier.ForceDisableTestAlerts {
			return false, "carrier disabled test alerts"
		}
		if !prefs.EtwsTestAlerts {
			return false, string(models.SettingEtwsTestAlerts) + " is off"
		}
		return true, ""
	}
	if record.IsCmas() {
		return cmasAllowed(record.Cmas.MessageClass, prefs, carrier)
	}

	switch pol.PolicySource {
	case policy.SourceBuiltin:
		switch record.ServiceCategory {
		case policy.Channel50:
			if !prefs.Channel50Alerts {
				return false, string(models.SettingChannel50Alerts) + " is off"
			}
		case policy.Channel60:
			if !prefs.Channel60Alerts {
				return false, string(models.SettingChannel60Alerts) + " is off"
			}
		}
	case policy.SourceCarrier:
		if pol.AlwaysOn {
			return true, ""
		}
		if pol.Emergency && !prefs.EmergencyAlerts {
			return false, string(models.SettingEmergencyAlerts) + " is off"
		}
	case policy.SourceCustom:
		if ch := customChannel(env.Channels, record.Slot, record.ServiceCategory); ch != nil && !ch.Enabled {
			return false, "custom channel " + ch.Name + " is disabled"
		}
	}
	return true, ""
}

func cmasAllowed(class models.CmasMessageClass, prefs models.Preferences, carrier models.CarrierFlags) (bool, string) {
	switch class {
	case models.CmasClassMonthlyTest, models.CmasClassExercise, models.CmasClassOperatorDefined:
		if carrier.ForceDisableTestAlerts {
			return false, "carrier disabled test alerts"
		}
		if !prefs.CmasTestAlerts {
			return false, string(models.SettingCmasTestAlerts) + " is off"
		}
		return true, ""
	}

	if !prefs.EmergencyAlerts {
		return false, string(models.SettingEmergencyAlerts) + " is off"
	}
	switch class {
	case models.CmasClassExtremeThreat:
		if !prefs.ExtremeThreatAlerts {
			return false, string(models.SettingExtremeThreatAlerts) + " is off"
		}
	case models.CmasClassSevereThreat:
		if !prefs.SevereThreatAlerts {
			return false, string(models.SettingSevereThreatAlerts) + " is off"
		}
	case models.CmasClassChildAbduction:
		if !prefs.AmberAlerts {
			return false, string(models.SettingAmberAlerts) + " is off"
		}
	}
	return true, ""
}

func (c *Classifier) speechLanguage(record models.BroadcastRecord) string {
	want := ""
	switch {
	case record.IsEtws():
		want = etwsSpeechLanguage
	case record.IsCmas():
		want = cmasSpeechLanguage
	default:
		return record.Language
	}
	if !strings.EqualFold(record.Language, want) {
		c.logger.Warn("correcting alert speech language",
			zap.String("language", record.Language),
			zap.String("corrected", want),
			zap.Int("service_category", record.ServiceCategory),
		)
	}
	return want
}

// DialogTitleFor picks the display heading. ETWS is checked first, then CMAS,
// then public alerts, then ordinary broadcasts.
func DialogTitleFor(etws *models.EtwsInfo, cmas *models.CmasInfo, emergency bool) models.DialogTitle {
	if etws != nil {
		switch etws.WarningType {
		case models.EtwsWarningEarthquake:
			return models.TitleEtwsEarthquake
		case models.EtwsWarningTsunami:
			return models.TitleEtwsTsunami
		case models.EtwsWarningEarthquakeAndTsunami:
			return models.TitleEtwsEarthquakeAndTsunami
		case models.EtwsWarningTest:
			return models.TitleEtwsTest
		default:
			return models.TitleEtwsOther
		}
	}
	if cmas != nil {
		switch cmas.MessageClass {
		case models.CmasClassPresidential:
			return models.TitleCmasPresidential
		case models.CmasClassExtremeThreat:
			return models.TitleCmasExtreme
		case models.CmasClassSevereThreat:
			return models.TitleCmasSevere
		case models.CmasClassChildAbduction:
			return models.TitleCmasAmber
		case models.CmasClassMonthlyTest:
			return models.TitleCmasMonthlyTest
		case models.CmasClassExercise:
			return models.TitleCmasExercise
		case models.CmasClassOperatorDefined:
			return models.TitleCmasOperatorDefined
		}
	}
	if emergency {
		return models.TitlePublicAlert
	}
	return models.TitleBroadcast
}

func customChannel(channels []models.CustomChannel, slot, id int) *models.CustomChannel {
	for i := range channels {
		if channels[i].Slot == slot && channels[i].Channel == id {
			return &channels[i]
		}
	}
	return nil
}

var cmasCategoryLabels = map[models.CmasCategory]string{
	models.CmasCategoryGeo:       "Geophysical",
	models.CmasCategoryMet:       "Meteorological",
	models.CmasCategorySafety:    "General emergency and public safety",
	models.CmasCategorySecurity:  "Law enforcement, military, homeland and local/private security",
	models.CmasCategoryRescue:    "Rescue and recovery",
	models.CmasCategoryFire:      "Fire suppression and rescue",
	models.CmasCategoryHealth:    "Medical and public health",
	models.CmasCategoryEnv:       "Pollution and other environmental",
	models.CmasCategoryTransport: "Public and private transportation",
	models.CmasCategoryInfra:     "Utility, telecommunication and other non-transport infrastructure",
	models.CmasCategoryCBRNE:     "Chemical, biological, radiological, nuclear or explosive threat or attack",
	models.CmasCategoryOther:     "Other events",
}

var cmasResponseLabels = map[models.CmasResponseType]string{
	models.CmasResponseShelter:  "Shelter",
	models.CmasResponseEvacuate: "Evacuate",
	models.CmasResponsePrepare:  "Prepare",
	models.CmasResponseExecute:  "Execute",
	models.CmasResponseMonitor:  "Monitor",
	models.CmasResponseAvoid:    "Avoid",
	models.CmasResponseAssess:   "Assess",
	models.CmasResponseNone:     "None",
}

var cmasSeverityLabels = map[models.CmasSeverity]string{
	models.CmasSeverityExtreme: "Extreme",
	models.CmasSeveritySevere:  "Severe",
}

var cmasUrgencyLabels = map[models.CmasUrgency]string{
	models.CmasUrgencyImmediate: "Immediate",
	models.CmasUrgencyExpected:  "Expected",
}

var cmasCertaintyLabels = map[models.CmasCertainty]string{
	models.CmasCertaintyObserved: "Observed",
	models.CmasCertaintyLikely:   "Likely",
}

// FormatBody renders the display text. CMAS records get a heading per known
// field ahead of the body.
func FormatBody(record models.BroadcastRecord) string {
	if record.Cmas == nil {
		return record.Body
	}
	var b strings.Builder
	heading := func(label string, value string, ok bool) {
		if ok {
			b.WriteString(label)
			b.WriteString(": ")
			b.WriteString(value)
			b.WriteString("\n")
		}
	}
	cmas := record.Cmas
	category, ok := cmasCategoryLabels[cmas.Category]
	heading("Category", category, ok)
	response, ok := cmasResponseLabels[cmas.ResponseType]
	heading("Response", response, ok)
	severity, ok := cmasSeverityLabels[cmas.Severity]
	heading("Severity", severity, ok)
	urgency, ok := cmasUrgencyLabels[cmas.Urgency]
	heading("Urgency", urgency, ok)
	certainty, ok := cmasCertaintyLabels[cmas.Certainty]
	heading("Certainty", certainty, ok)
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(record.Body)
	return b.String()
}
