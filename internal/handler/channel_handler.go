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

type channelService interface {
	List(ctx context.Context, slot int) ([]models.CustomChannel, error)
	Create(ctx context.Context, req dto.CreateChannelRequest) (*models.CustomChannel, error)
	Update(ctx context.Context, id int64, req dto.UpdateChannelRequest) (*models.CustomChannel, error)
	Delete(ctx context.Context, id int64) error
	ApplyCdmaProgram(ctx context.Context, req dto.CdmaProgramRequest) (*dto.CdmaProgramResponse, error)
}

// ChannelHandler manages user-defined broadcast channels.
type ChannelHandler struct {
	service channelService
}

// NewChannelHandler constructs a ChannelHandler.
func NewChannelHandler(svc channelService) *ChannelHandler {
	return &ChannelHandler{service: svc}
}

// List godoc
// @Summary List custom channels
// @Tags Channels
// @Produce json
// @Param slot query int false "SIM slot"
// @Success 200 {object} response.Envelope
// @Router /channels [get]
func (h *ChannelHandler) List(c *gin.Context) {
	slot, err := slotQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	channels, err := h.service.List(c.Request.Context(), slot)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, channels, nil)
}

// Create godoc
// @Summary Add a custom channel
// @Tags Channels
// @Accept json
// @Produce json
// @Param payload body dto.CreateChannelRequest true "Channel"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /channels [post]
func (h *ChannelHandler) Create(c *gin.Context) {
	var req dto.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid channel payload"))
		return
	}
	channel, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, channel)
}

// Update godoc
// @Summary Change a custom channel
// @Tags Channels
// @Accept json
// @Produce json
// @Param id path int true "Channel ID"
// @Param payload body dto.UpdateChannelRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Router /channels/{id} [put]
func (h *ChannelHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid channel payload"))
		return
	}
	channel, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, channel, nil)
}

// Delete godoc
// @Summary Remove a custom channel
// @Tags Channels
// @Param id path int true "Channel ID"
// @Success 204
// @Router /channels/{id} [delete]
func (h *ChannelHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CdmaProgram godoc
// @Summary Apply CDMA service category program data
// @Tags Channels
// @Accept json
// @Produce json
// @Param payload body dto.CdmaProgramRequest true "Program data"
// @Success 200 {object} response.Envelope
// @Router /channels/cdma-program [post]
func (h *ChannelHandler) CdmaProgram(c *gin.Context) {
	var req dto.CdmaProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid program payload"))
		return
	}
	result, err := h.service.ApplyCdmaProgram(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
