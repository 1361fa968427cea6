package dto

// SettingItem represents a setting exposed via API.
type SettingItem struct {
	Name        string `json:"name"`
	Slot        int    `json:"slot"`
	Value       string `json:"value"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

// UpdateSettingRequest describes payload for updating a single setting.
type UpdateSettingRequest struct {
	Name  string `json:"name" validate:"required"`
	Slot  int    `json:"slot" validate:"min=0,max=7"`
	Value string `json:"value" validate:"required"`
}

// BulkUpdateSettingRequest holds multiple update requests.
type BulkUpdateSettingRequest struct {
	Items []UpdateSettingRequest `json:"items" validate:"required,min=1,dive"`
}
