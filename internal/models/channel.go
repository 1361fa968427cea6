package models

import "time"

// MaxChannelID is the top of the 16-bit channel id space.
const MaxChannelID = 0xFFFF

// ChannelRange is one built-in or carrier-configured channel rule.
type ChannelRange struct {
	StartID   int      `json:"start_id"`
	EndID     int      `json:"end_id"`
	ToneType  ToneType `json:"tone_type"`
	AlwaysOn  bool     `json:"always_on"`
	Emergency bool     `json:"emergency"`
	Name      string   `json:"name,omitempty"`
	Source    string   `json:"source,omitempty"`
}

// Contains reports whether id falls inside the inclusive range.
func (r ChannelRange) Contains(id int) bool {
	return id >= r.StartID && id <= r.EndID
}

// CustomChannel is a user-managed channel subscription.
type CustomChannel struct {
	ID        int64     `json:"id"`
	Slot      int       `json:"slot"`
	Name      string    `json:"name"`
	Channel   int       `json:"channel"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CdmaProgramOperation is an SCPD operation code.
type CdmaProgramOperation string

const (
	CdmaProgramAdd      CdmaProgramOperation = "add"
	CdmaProgramDelete   CdmaProgramOperation = "delete"
	CdmaProgramClearAll CdmaProgramOperation = "clear_all"
)

// CdmaProgramData is one service category program entry from the network.
type CdmaProgramData struct {
	Operation CdmaProgramOperation `json:"operation"`
	Category  int                  `json:"category"`
}
