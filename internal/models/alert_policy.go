package models

import (
	"strings"
	"time"
)

// ToneType selects the alert sound.
type ToneType string

const (
	ToneEarthquake           ToneType = "earthquake"
	ToneTsunami              ToneType = "tsunami"
	ToneEarthquakeAndTsunami ToneType = "earthquake_and_tsunami"
	ToneOther                ToneType = "other"
	ToneTest                 ToneType = "test"
	ToneCMASDefault          ToneType = "cmas_default"
	TonePresidential         ToneType = "presidential"
	ToneNone                 ToneType = "none"
)

var toneTypes = map[string]ToneType{
	string(ToneEarthquake):           ToneEarthquake,
	string(ToneTsunami):              ToneTsunami,
	string(ToneEarthquakeAndTsunami): ToneEarthquakeAndTsunami,
	string(ToneOther):                ToneOther,
	"etws_default":                   ToneOther,
	string(ToneTest):                 ToneTest,
	string(ToneCMASDefault):          ToneCMASDefault,
	string(TonePresidential):         TonePresidential,
	string(ToneNone):                 ToneNone,
}

// ParseToneType accepts tone names case-insensitively.
func ParseToneType(raw string) (ToneType, bool) {
	tone, ok := toneTypes[strings.ToLower(strings.TrimSpace(raw))]
	return tone, ok
}

// DialogTitle is the display heading category of an alert.
type DialogTitle string

const (
	TitleEtwsEarthquake           DialogTitle = "etws_earthquake"
	TitleEtwsTsunami              DialogTitle = "etws_tsunami"
	TitleEtwsEarthquakeAndTsunami DialogTitle = "etws_earthquake_and_tsunami"
	TitleEtwsTest                 DialogTitle = "etws_test"
	TitleEtwsOther                DialogTitle = "etws_other"
	TitleCmasPresidential         DialogTitle = "cmas_presidential"
	TitleCmasExtreme              DialogTitle = "cmas_extreme"
	TitleCmasSevere               DialogTitle = "cmas_severe"
	TitleCmasAmber                DialogTitle = "cmas_amber"
	TitleCmasMonthlyTest          DialogTitle = "cmas_required_monthly_test"
	TitleCmasExercise             DialogTitle = "cmas_exercise"
	TitleCmasOperatorDefined      DialogTitle = "cmas_operator_defined"
	TitlePublicAlert              DialogTitle = "pws_other"
	TitleBroadcast                DialogTitle = "cb_other"
)

// AlertPolicy is the derived alerting decision for one broadcast. It is never persisted.
type AlertPolicy struct {
	Emergency       bool          `json:"is_emergency"`
	ToneType        ToneType      `json:"tone_type"`
	PlayTone        bool          `json:"play_tone"`
	Vibrate         bool          `json:"vibrate"`
	ForceVibrate    bool          `json:"force_vibrate"`
	SpeechEnabled   bool          `json:"speech_enabled"`
	SpeechLanguage  string        `json:"speech_language,omitempty"`
	DialogTitle     DialogTitle   `json:"dialog_title"`
	DisplayName     string        `json:"display_name,omitempty"`
	AlwaysOn        bool          `json:"always_on"`
	AlertDuration   time.Duration `json:"alert_duration"`
	PolicySource    string        `json:"policy_source"`
	ServiceCategory int           `json:"service_category"`
}
