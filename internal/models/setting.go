package models

import "time"

// SettingName identifies a logical user or carrier setting.
type SettingName string

const (
	SettingEmergencyAlerts       SettingName = "enable_emergency_alerts"
	SettingPresidentialAlerts    SettingName = "enable_presidential_alerts"
	SettingExtremeThreatAlerts   SettingName = "enable_cmas_extreme_threat_alerts"
	SettingSevereThreatAlerts    SettingName = "enable_cmas_severe_threat_alerts"
	SettingAmberAlerts           SettingName = "enable_cmas_amber_alerts"
	SettingEtwsTestAlerts        SettingName = "enable_etws_test_alerts"
	SettingCmasTestAlerts        SettingName = "enable_cmas_test_alerts"
	SettingChannel50Alerts       SettingName = "enable_channel_50_alerts"
	SettingChannel60Alerts       SettingName = "enable_channel_60_alerts"
	SettingGeneralAlerts         SettingName = "enable_general_alerts"
	SettingAlertVibrate          SettingName = "enable_alert_vibrate"
	SettingAlertTone             SettingName = "enable_alert_tone"
	SettingAlertSpeech           SettingName = "enable_alert_speech"
	SettingAlertSoundDuration    SettingName = "alert_sound_duration"
	SettingAlertReminderInterval SettingName = "alert_reminder_interval"
	SettingShowCmasOptOutDialog  SettingName = "show_cmas_opt_out_dialog"
)

// SettingKey is the structured (setting, slot) key.
type SettingKey struct {
	Name SettingName `json:"name"`
	Slot int         `json:"slot"`
}

// SettingType defines supported setting value types.
type SettingType string

const (
	SettingTypeString  SettingType = "STRING"
	SettingTypeBoolean SettingType = "BOOLEAN"
	SettingTypeInteger SettingType = "INTEGER"
)

// Setting is a persisted or defaulted setting value.
type Setting struct {
	Name        SettingName `json:"name"`
	Slot        int         `json:"slot"`
	Value       string      `json:"value"`
	Type        SettingType `json:"type"`
	Description string      `json:"description,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Key returns the structured key of the setting.
func (s Setting) Key() SettingKey {
	return SettingKey{Name: s.Name, Slot: s.Slot}
}

// Preferences is a typed snapshot of the settings of one slot.
type Preferences struct {
	Slot                  int    `json:"slot"`
	EmergencyAlerts       bool   `json:"enable_emergency_alerts"`
	ExtremeThreatAlerts   bool   `json:"enable_cmas_extreme_threat_alerts"`
	SevereThreatAlerts    bool   `json:"enable_cmas_severe_threat_alerts"`
	AmberAlerts           bool   `json:"enable_cmas_amber_alerts"`
	EtwsTestAlerts        bool   `json:"enable_etws_test_alerts"`
	CmasTestAlerts        bool   `json:"enable_cmas_test_alerts"`
	Channel50Alerts       bool   `json:"enable_channel_50_alerts"`
	Channel60Alerts       bool   `json:"enable_channel_60_alerts"`
	GeneralAlerts         bool   `json:"enable_general_alerts"`
	AlertVibrate          bool   `json:"enable_alert_vibrate"`
	AlertTone             bool   `json:"enable_alert_tone"`
	AlertSpeech           bool   `json:"enable_alert_speech"`
	AlertSoundDuration    int    `json:"alert_sound_duration"`
	AlertReminderInterval string `json:"alert_reminder_interval"`
	ShowCmasOptOutDialog  bool   `json:"show_cmas_opt_out_dialog"`
}

// DefaultPreferences returns the factory settings for a slot.
func DefaultPreferences(slot int) Preferences {
	return Preferences{
		Slot:                  slot,
		EmergencyAlerts:       true,
		ExtremeThreatAlerts:   true,
		SevereThreatAlerts:    true,
		AmberAlerts:           true,
		AlertVibrate:          true,
		AlertTone:             true,
		AlertSpeech:           true,
		AlertSoundDuration:    4,
		AlertReminderInterval: "0",
		ShowCmasOptOutDialog:  true,
	}
}

// CarrierFlags are the boolean switches supplied by carrier configuration.
type CarrierFlags struct {
	ForceDisableTestAlerts  bool `json:"force_disable_test_alerts"`
	AlwaysShowAlertToggle   bool `json:"always_show_alert_toggle"`
	PresidentialToneVibrate bool `json:"presidential_tone_vibrate"`
	AlertToneEnable         bool `json:"alert_tone_enable"`
	RegionalWEAReminder     bool `json:"regional_wea_reminder"`
}
