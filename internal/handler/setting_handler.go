package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
	"github.com/noah-isme/cellbroadcast-api/pkg/response"
)

type settingService interface {
	List(ctx context.Context, slot int) ([]dto.SettingItem, error)
	Get(ctx context.Context, name string, slot int) (*dto.SettingItem, error)
	Update(ctx context.Context, req dto.UpdateSettingRequest) (*dto.SettingItem, error)
	BulkUpdate(ctx context.Context, req dto.BulkUpdateSettingRequest) ([]dto.SettingItem, error)
}

// SettingHandler exposes user alert preferences.
type SettingHandler struct {
	service settingService
}

// NewSettingHandler constructs a SettingHandler.
func NewSettingHandler(svc settingService) *SettingHandler {
	return &SettingHandler{service: svc}
}

// List godoc
// @Summary List alert settings
// @Tags Settings
// @Produce json
// @Param slot query int false "SIM slot"
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingHandler) List(c *gin.Context) {
	slot, err := slotQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), slot)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get one alert setting
// @Tags Settings
// @Produce json
// @Param name path string true "Setting name"
// @Param slot query int false "SIM slot"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /settings/{name} [get]
func (h *SettingHandler) Get(c *gin.Context) {
	slot, err := slotQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Get(c.Request.Context(), c.Param("name"), slot)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Update godoc
// @Summary Update one alert setting
// @Tags Settings
// @Accept json
// @Produce json
// @Param name path string true "Setting name"
// @Param payload body dto.UpdateSettingRequest true "New value"
// @Success 200 {object} response.Envelope
// @Router /settings/{name} [put]
func (h *SettingHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid setting payload"))
		return
	}
	name := c.Param("name")
	if req.Name == "" {
		req.Name = name
	}
	if req.Name != name {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "setting name mismatch"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// BulkUpdate godoc
// @Summary Update several alert settings
// @Description Applies every item or none of them.
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.BulkUpdateSettingRequest true "Settings"
// @Success 200 {object} response.Envelope
// @Router /settings [put]
func (h *SettingHandler) BulkUpdate(c *gin.Context) {
	var req dto.BulkUpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}
	items, err := h.service.BulkUpdate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
