package dto

import (
	"time"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
)

// LocationPayload is the location block of an ingested broadcast. Absent LAC or CID
// are sent as null or omitted.
type LocationPayload struct {
	PLMN string `json:"plmn" validate:"omitempty,numeric,min=5,max=6"`
	LAC  *int   `json:"lac" validate:"omitempty,min=0,max=65535"`
	CID  *int   `json:"cid" validate:"omitempty,min=0"`
}

// EtwsPayload carries ETWS info.
type EtwsPayload struct {
	WarningType        int  `json:"warning_type" validate:"min=0,max=4"`
	EmergencyUserAlert bool `json:"emergency_user_alert"`
	Popup              bool `json:"popup"`
}

// CmasPayload carries CMAS info. Missing optional fields default to unknown.
type CmasPayload struct {
	MessageClass int  `json:"message_class" validate:"min=-1,max=6"`
	Category     *int `json:"category" validate:"omitempty,min=-1,max=11"`
	ResponseType *int `json:"response_type" validate:"omitempty,min=-1,max=7"`
	Severity     *int `json:"severity" validate:"omitempty,min=-1,max=1"`
	Urgency      *int `json:"urgency" validate:"omitempty,min=-1,max=1"`
	Certainty    *int `json:"certainty" validate:"omitempty,min=-1,max=1"`
}

// IngestBroadcastRequest is a decoded broadcast posted by the radio collaborator.
type IngestBroadcastRequest struct {
	Slot              int             `json:"slot" validate:"min=0,max=7"`
	GeographicalScope int             `json:"geographical_scope" validate:"min=0,max=3"`
	SerialNumber      int             `json:"serial_number" validate:"min=0,max=65535"`
	Location          LocationPayload `json:"location"`
	ServiceCategory   int             `json:"service_category" validate:"min=0,max=65535"`
	Language          string          `json:"language" validate:"omitempty,max=8"`
	Body              string          `json:"body" validate:"required"`
	Format            int             `json:"format" validate:"oneof=1 2"`
	Priority          int             `json:"priority" validate:"min=0,max=3"`
	Etws              *EtwsPayload    `json:"etws" validate:"omitempty"`
	Cmas              *CmasPayload    `json:"cmas" validate:"omitempty"`
	ReceivedAt        *time.Time      `json:"received_at"`
}

// ToModel converts the payload into a raw broadcast.
func (r IngestBroadcastRequest) ToModel(now time.Time) models.RawBroadcast {
	raw := models.RawBroadcast{
		Slot:              r.Slot,
		GeographicalScope: models.GeographicalScope(r.GeographicalScope),
		SerialNumber:      r.SerialNumber,
		Location: models.Location{
			PLMN: r.Location.PLMN,
			LAC:  intOr(r.Location.LAC, models.LocationUnknown),
			CID:  intOr(r.Location.CID, models.LocationUnknown),
		},
		ServiceCategory: r.ServiceCategory,
		Language:        r.Language,
		Body:            r.Body,
		Format:          models.MessageFormat(r.Format),
		Priority:        models.MessagePriority(r.Priority),
		ReceivedAt:      now,
	}
	if r.ReceivedAt != nil {
		raw.ReceivedAt = *r.ReceivedAt
	}
	if r.Etws != nil {
		raw.Etws = &models.EtwsInfo{
			WarningType:        models.EtwsWarningType(r.Etws.WarningType),
			EmergencyUserAlert: r.Etws.EmergencyUserAlert,
			Popup:              r.Etws.Popup,
		}
	}
	if r.Cmas != nil {
		raw.Cmas = &models.CmasInfo{
			MessageClass: models.CmasMessageClass(r.Cmas.MessageClass),
			Category:     models.CmasCategory(intOr(r.Cmas.Category, -1)),
			ResponseType: models.CmasResponseType(intOr(r.Cmas.ResponseType, -1)),
			Severity:     models.CmasSeverity(intOr(r.Cmas.Severity, -1)),
			Urgency:      models.CmasUrgency(intOr(r.Cmas.Urgency, -1)),
			Certainty:    models.CmasCertainty(intOr(r.Cmas.Certainty, -1)),
		}
	}
	return raw
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

// BroadcastFilter holds query parameters for listing history.
type BroadcastFilter struct {
	Slot              *int `form:"slot" validate:"omitempty,min=0,max=7"`
	Page              int  `form:"page" validate:"omitempty,min=1"`
	PageSize          int  `form:"page_size" validate:"omitempty,min=1,max=200"`
	PresidentialFirst bool `form:"presidential_first"`
	IncludeDeleted    bool `form:"include_deleted"`
}

// BroadcastDetail is one record with its recomputed policy.
type BroadcastDetail struct {
	models.BroadcastRecord
	Policy        models.AlertPolicy `json:"policy"`
	FormattedBody string             `json:"formatted_body"`
}

// MarkReadByTimeRequest marks every record delivered at the given instant.
type MarkReadByTimeRequest struct {
	DeliveryTime time.Time `json:"delivery_time" validate:"required"`
}

// AffectedResponse reports how many rows an operation changed.
type AffectedResponse struct {
	Affected int64 `json:"affected"`
}

// UnreadCountResponse reports unread records.
type UnreadCountResponse struct {
	Unread int `json:"unread"`
}
