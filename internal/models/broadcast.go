package models

import "time"

// GeographicalScope tells which location fields identify a broadcast.
type GeographicalScope int

const (
	GeoScopeCellWideImmediate GeographicalScope = 0
	GeoScopePLMNWide          GeographicalScope = 1
	GeoScopeLAWide            GeographicalScope = 2
	GeoScopeCellWide          GeographicalScope = 3
)

// Valid reports whether the scope is one of the two-bit values.
func (g GeographicalScope) Valid() bool {
	return g >= GeoScopeCellWideImmediate && g <= GeoScopeCellWide
}

// UsesLAC reports whether the location area code is meaningful for the scope.
func (g GeographicalScope) UsesLAC() bool {
	return g != GeoScopePLMNWide
}

// UsesCID reports whether the cell id is meaningful for the scope.
func (g GeographicalScope) UsesCID() bool {
	return g == GeoScopeCellWide || g == GeoScopeCellWideImmediate
}

// MessageFormat is the air interface the broadcast arrived on.
type MessageFormat int

const (
	MessageFormat3GPP  MessageFormat = 1
	MessageFormat3GPP2 MessageFormat = 2
)

// MessagePriority mirrors the radio layer priority levels.
type MessagePriority int

const (
	PriorityNormal      MessagePriority = 0
	PriorityInteractive MessagePriority = 1
	PriorityUrgent      MessagePriority = 2
	PriorityEmergency   MessagePriority = 3
)

// LocationUnknown marks an absent LAC or CID.
const LocationUnknown = -1

// Location identifies where a broadcast was received.
type Location struct {
	PLMN string `json:"plmn,omitempty"`
	LAC  int    `json:"lac"`
	CID  int    `json:"cid"`
}

// UnknownLocation returns a location with no PLMN, LAC or CID.
func UnknownLocation() Location {
	return Location{LAC: LocationUnknown, CID: LocationUnknown}
}

// Scoped drops the fields the geographical scope does not use.
func (l Location) Scoped(scope GeographicalScope) Location {
	out := Location{PLMN: l.PLMN, LAC: LocationUnknown, CID: LocationUnknown}
	if scope.UsesLAC() && l.LAC >= 0 {
		out.LAC = l.LAC
	}
	if scope.UsesCID() && l.CID >= 0 {
		out.CID = l.CID
	}
	return out
}

// EtwsInfo carries the ETWS warning fields of a broadcast.
type EtwsInfo struct {
	WarningType        EtwsWarningType `json:"warning_type"`
	EmergencyUserAlert bool            `json:"emergency_user_alert"`
	Popup              bool            `json:"popup"`
}

// CmasInfo carries the CMAS fields of a broadcast. Unknown values use -1.
type CmasInfo struct {
	MessageClass CmasMessageClass `json:"message_class"`
	Category     CmasCategory     `json:"category"`
	ResponseType CmasResponseType `json:"response_type"`
	Severity     CmasSeverity     `json:"severity"`
	Urgency      CmasUrgency      `json:"urgency"`
	Certainty    CmasCertainty    `json:"certainty"`
}

// UnknownCmasInfo returns a CmasInfo with every field unknown except the class.
func UnknownCmasInfo(class CmasMessageClass) CmasInfo {
	return CmasInfo{
		MessageClass: class,
		Category:     CmasCategoryUnknown,
		ResponseType: CmasResponseUnknown,
		Severity:     CmasSeverityUnknown,
		Urgency:      CmasUrgencyUnknown,
		Certainty:    CmasCertaintyUnknown,
	}
}

// RawBroadcast is a decoded broadcast as handed over by the radio layer.
type RawBroadcast struct {
	Slot              int               `json:"slot"`
	GeographicalScope GeographicalScope `json:"geographical_scope"`
	SerialNumber      int               `json:"serial_number"`
	Location          Location          `json:"location"`
	ServiceCategory   int               `json:"service_category"`
	Language          string            `json:"language,omitempty"`
	Body              string            `json:"body"`
	Format            MessageFormat     `json:"format"`
	Priority          MessagePriority   `json:"priority"`
	Etws              *EtwsInfo         `json:"etws,omitempty"`
	Cmas              *CmasInfo         `json:"cmas,omitempty"`
	ReceivedAt        time.Time         `json:"received_at"`
}

// BroadcastRecord is one received alert as stored in history.
type BroadcastRecord struct {
	ID                int64             `json:"id"`
	Slot              int               `json:"slot"`
	GeographicalScope GeographicalScope `json:"geographical_scope"`
	SerialNumber      int               `json:"serial_number"`
	Location          Location          `json:"location"`
	ServiceCategory   int               `json:"service_category"`
	Language          string            `json:"language,omitempty"`
	Body              string            `json:"body"`
	Format            MessageFormat     `json:"format"`
	Priority          MessagePriority   `json:"priority"`
	Etws              *EtwsInfo         `json:"etws,omitempty"`
	Cmas              *CmasInfo         `json:"cmas,omitempty"`
	DeliveryTime      time.Time         `json:"delivery_time"`
	Read              bool              `json:"read"`
	Deleted           bool              `json:"deleted"`
	DeletedAt         *time.Time        `json:"deleted_at,omitempty"`
}

// IsEtws reports whether the record carries ETWS info.
func (r BroadcastRecord) IsEtws() bool {
	return r.Etws != nil
}

// IsCmas reports whether the record carries CMAS info.
func (r BroadcastRecord) IsCmas() bool {
	return r.Cmas != nil
}

// CmasClass returns the CMAS class or unknown.
func (r BroadcastRecord) CmasClass() CmasMessageClass {
	if r.Cmas == nil {
		return CmasClassUnknown
	}
	return r.Cmas.MessageClass
}

// IsPresidential reports a presidential-level CMAS alert.
func (r BroadcastRecord) IsPresidential() bool {
	return r.CmasClass() == CmasClassPresidential
}

// IsPublicAlert reports whether the broadcast arrived with emergency priority.
func (r BroadcastRecord) IsPublicAlert() bool {
	return r.Priority == PriorityEmergency
}

// IsEmergency is a public alert that is not a child abduction alert.
func (r BroadcastRecord) IsEmergency() bool {
	return r.IsPublicAlert() && r.CmasClass() != CmasClassChildAbduction
}

// Clone returns a deep copy of the record.
func (r BroadcastRecord) Clone() BroadcastRecord {
	out := r
	if r.Etws != nil {
		etws := *r.Etws
		out.Etws = &etws
	}
	if r.Cmas != nil {
		cmas := *r.Cmas
		out.Cmas = &cmas
	}
	if r.DeletedAt != nil {
		at := *r.DeletedAt
		out.DeletedAt = &at
	}
	return out
}
