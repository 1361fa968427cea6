package models

import "time"

// PresentationRequest is the decision handed to the audio and UI collaborator.
type PresentationRequest struct {
	RequestID     string          `json:"request_id,omitempty"`
	Record        BroadcastRecord `json:"record"`
	Policy        AlertPolicy     `json:"policy"`
	FormattedBody string          `json:"formatted_body"`
	Reminder      bool            `json:"reminder"`
	RequestedAt   time.Time       `json:"requested_at"`
}

// PipelineStatus is the outcome of one pipeline run.
type PipelineStatus string

const (
	PipelineProcessed PipelineStatus = "processed"
	PipelineDuplicate PipelineStatus = "duplicate"
	PipelineFiltered  PipelineStatus = "filtered"
)

// PipelineResult reports what happened to one ingested broadcast.
type PipelineResult struct {
	Status            PipelineStatus `json:"status"`
	RecordID          int64          `json:"record_id,omitempty"`
	Persisted         bool           `json:"persisted"`
	StoreError        string         `json:"store_error,omitempty"`
	Presented         bool           `json:"presented"`
	PresentError      string         `json:"present_error,omitempty"`
	ReminderScheduled bool           `json:"reminder_scheduled"`
	FilterReason      string         `json:"filter_reason,omitempty"`
	Policy            *AlertPolicy   `json:"policy,omitempty"`
}
