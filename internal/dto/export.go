package dto

// ExportQuery selects the rendition of the history export.
type ExportQuery struct {
	Format         string `form:"format" validate:"omitempty,oneof=csv pdf xlsx"`
	Slot           *int   `form:"slot" validate:"omitempty,min=0,max=7"`
	IncludeDeleted bool   `form:"include_deleted"`
}

// DismissRequest is sent when the user dismisses the alert dialog.
type DismissRequest struct {
	BroadcastID int64 `json:"broadcast_id"`
	MarkRead    bool  `json:"mark_read"`
}
