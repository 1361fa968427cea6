package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
	"github.com/noah-isme/cellbroadcast-api/pkg/response"
)

type alertService interface {
	Reminder() models.ReminderState
	Dismiss(ctx context.Context, req dto.DismissRequest) (models.ReminderState, error)
}

// AlertHandler exposes the active alert reminder.
type AlertHandler struct {
	service alertService
}

// NewAlertHandler constructs an AlertHandler.
func NewAlertHandler(svc alertService) *AlertHandler {
	return &AlertHandler{service: svc}
}

// Reminder godoc
// @Summary Current reminder state
// @Tags Alerts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /alerts/reminder [get]
func (h *AlertHandler) Reminder(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Reminder(), nil)
}

// Dismiss godoc
// @Summary Dismiss the alert dialog
// @Description Cancels any pending reminder and optionally marks the alert read.
// @Tags Alerts
// @Accept json
// @Produce json
// @Param payload body dto.DismissRequest true "Dismiss payload"
// @Success 200 {object} response.Envelope
// @Router /alerts/dismiss [post]
func (h *AlertHandler) Dismiss(c *gin.Context) {
	var req dto.DismissRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid dismiss payload"))
		return
	}
	state, err := h.service.Dismiss(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}
