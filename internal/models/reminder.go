package models

import "time"

// ReminderStatus is the reminder state machine position.
type ReminderStatus string

const (
	ReminderIdle      ReminderStatus = "IDLE"
	ReminderScheduled ReminderStatus = "SCHEDULED"
	ReminderFired     ReminderStatus = "FIRED"
)

// ReminderState is the single outstanding reminder, persisted between firings.
type ReminderState struct {
	Status      ReminderStatus   `json:"status"`
	Token       string           `json:"token,omitempty"`
	BroadcastID int64            `json:"broadcast_id,omitempty"`
	Broadcast   *BroadcastRecord `json:"broadcast,omitempty"`
	FireCount   int              `json:"fire_count"`
	MaxFires    int              `json:"max_fires"`
	Interval    time.Duration    `json:"interval"`
	NextFireAt  *time.Time       `json:"next_fire_at,omitempty"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// IdleReminder returns the empty state.
func IdleReminder(now time.Time) ReminderState {
	return ReminderState{Status: ReminderIdle, UpdatedAt: now}
}
