package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
	"github.com/noah-isme/cellbroadcast-api/pkg/response"
)

type carrierService interface {
	Ranges() dto.ChannelRangesResponse
	ApplyRanges(req dto.ChannelRangesRequest) (*dto.ChannelRangesResponse, error)
}

// CarrierHandler exposes carrier channel range configuration.
type CarrierHandler struct {
	service carrierService
}

// NewCarrierHandler constructs a CarrierHandler.
func NewCarrierHandler(svc carrierService) *CarrierHandler {
	return &CarrierHandler{service: svc}
}

// Ranges godoc
// @Summary Active carrier channel ranges
// @Tags Carrier
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /carrier/channel-ranges [get]
func (h *CarrierHandler) Ranges(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Ranges(), nil)
}

// ApplyRanges godoc
// @Summary Replace carrier channel ranges
// @Description Entries that fail to parse are reported and skipped.
// @Tags Carrier
// @Accept json
// @Produce json
// @Param payload body dto.ChannelRangesRequest true "Range entries"
// @Success 200 {object} response.Envelope
// @Router /carrier/channel-ranges [put]
func (h *CarrierHandler) ApplyRanges(c *gin.Context) {
	var req dto.ChannelRangesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid ranges payload"))
		return
	}
	result, err := h.service.ApplyRanges(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
