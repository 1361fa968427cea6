package dto

import "github.com/noah-isme/cellbroadcast-api/internal/models"

// CreateChannelRequest adds a custom channel.
type CreateChannelRequest struct {
	Slot    int    `json:"slot" validate:"min=0,max=7"`
	Name    string `json:"name" validate:"required,max=64"`
	Channel int    `json:"channel" validate:"min=0,max=65535"`
	Enabled *bool  `json:"enabled"`
}

// UpdateChannelRequest changes a custom channel. Omitted fields keep their value.
type UpdateChannelRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=64"`
	Channel *int    `json:"channel" validate:"omitempty,min=0,max=65535"`
	Enabled *bool   `json:"enabled"`
}

// CdmaProgramItem is one SCPD entry.
type CdmaProgramItem struct {
	Operation string `json:"operation" validate:"required,oneof=add delete clear_all"`
	Category  int    `json:"category" validate:"min=0,max=65535"`
}

// CdmaProgramRequest applies service category program data from the network.
type CdmaProgramRequest struct {
	Slot  int               `json:"slot" validate:"min=0,max=7"`
	Items []CdmaProgramItem `json:"items" validate:"required,min=1,dive"`
}

// CdmaProgramResponse lists the settings that changed.
type CdmaProgramResponse struct {
	Updated []SettingItem `json:"updated"`
	Ignored []int         `json:"ignored"`
}

// ChannelRangesRequest replaces the carrier channel range list.
type ChannelRangesRequest struct {
	Entries []string `json:"entries" validate:"dive,max=256"`
}

// RejectedRangeItem is an entry the parser could not accept.
type RejectedRangeItem struct {
	Entry  string `json:"entry"`
	Reason string `json:"reason"`
}

// ChannelRangesResponse reports the active ranges after an apply.
type ChannelRangesResponse struct {
	Ranges    []models.ChannelRange `json:"ranges"`
	Effective []string              `json:"effective"`
	Entries   []string              `json:"entries"`
	Rejected  []RejectedRangeItem   `json:"rejected"`
}
