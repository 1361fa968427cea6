package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	"github.com/noah-isme/cellbroadcast-api/internal/service"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
	"github.com/noah-isme/cellbroadcast-api/pkg/response"
)

type broadcastIngester interface {
	Ingest(ctx context.Context, req dto.IngestBroadcastRequest) (*models.PipelineResult, error)
}

type broadcastHistory interface {
	List(ctx context.Context, filter dto.BroadcastFilter) ([]models.BroadcastRecord, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*dto.BroadcastDetail, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id int64) error
	MarkReadByTime(ctx context.Context, req dto.MarkReadByTimeRequest) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context, hard bool) (int64, error)
	Purge(ctx context.Context) (int64, error)
}

type historyExporter interface {
	Export(ctx context.Context, query dto.ExportQuery) (*service.ExportResult, error)
}

// BroadcastHandler exposes ingest and alert history endpoints.
type BroadcastHandler struct {
	ingest   broadcastIngester
	history  broadcastHistory
	exporter historyExporter
	logger   *zap.Logger
}

// NewBroadcastHandler constructs a BroadcastHandler.
func NewBroadcastHandler(ingest broadcastIngester, history broadcastHistory, exporter historyExporter, logger *zap.Logger) *BroadcastHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BroadcastHandler{ingest: ingest, history: history, exporter: exporter, logger: logger}
}

// Ingest godoc
// @Summary Ingest a decoded broadcast
// @Description Runs the broadcast through filtering, duplicate detection, storage, presentation and reminder scheduling.
// @Tags Broadcasts
// @Accept json
// @Produce json
// @Param payload body dto.IngestBroadcastRequest true "Decoded broadcast"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope "duplicate or filtered"
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /broadcasts [post]
func (h *BroadcastHandler) Ingest(c *gin.Context) {
	var req dto.IngestBroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid broadcast payload"))
		return
	}
	result, err := h.ingest.Ingest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Debug("broadcast ingested", zap.String("actor", actorOf(c)), zap.String("status", string(result.Status)))
	if result.Status != models.PipelineProcessed {
		response.JSON(c, http.StatusOK, result, nil)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List alert history
// @Tags Broadcasts
// @Produce json
// @Param slot query int false "SIM slot"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Param presidential_first query bool false "Presidential alerts first"
// @Param include_deleted query bool false "Include soft-deleted rows"
// @Success 200 {object} response.Envelope
// @Router /broadcasts [get]
func (h *BroadcastHandler) List(c *gin.Context) {
	var filter dto.BroadcastFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	records, pagination, err := h.history.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// UnreadCount godoc
// @Summary Count unread alerts
// @Tags Broadcasts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /broadcasts/unread-count [get]
func (h *BroadcastHandler) UnreadCount(c *gin.Context) {
	n, err := h.history.UnreadCount(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.UnreadCountResponse{Unread: n}, nil)
}

// Get godoc
// @Summary Get one alert
// @Description Returns the stored record with its alert policy recomputed under the current settings.
// @Tags Broadcasts
// @Produce json
// @Param id path int true "Broadcast ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /broadcasts/{id} [get]
func (h *BroadcastHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.history.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// MarkRead godoc
// @Summary Mark an alert read
// @Tags Broadcasts
// @Param id path int true "Broadcast ID"
// @Success 204
// @Router /broadcasts/{id}/read [post]
func (h *BroadcastHandler) MarkRead(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.history.MarkRead(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MarkReadByTime godoc
// @Summary Mark alerts read by delivery time
// @Tags Broadcasts
// @Accept json
// @Produce json
// @Param payload body dto.MarkReadByTimeRequest true "Delivery time"
// @Success 200 {object} response.Envelope
// @Router /broadcasts/read-by-time [post]
func (h *BroadcastHandler) MarkReadByTime(c *gin.Context) {
	var req dto.MarkReadByTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	n, err := h.history.MarkReadByTime(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.AffectedResponse{Affected: n}, nil)
}

// Delete godoc
// @Summary Delete an alert
// @Tags Broadcasts
// @Param id path int true "Broadcast ID"
// @Success 204
// @Router /broadcasts/{id} [delete]
func (h *BroadcastHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.history.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteAll godoc
// @Summary Delete all alerts
// @Tags Broadcasts
// @Produce json
// @Param hard query bool false "Remove rows instead of soft deleting"
// @Success 200 {object} response.Envelope
// @Router /broadcasts [delete]
func (h *BroadcastHandler) DeleteAll(c *gin.Context) {
	hard := false
	if raw := c.Query("hard"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "hard must be a boolean"))
			return
		}
		hard = v
	}
	n, err := h.history.DeleteAll(c.Request.Context(), hard)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Info("broadcast history deleted", zap.String("actor", actorOf(c)), zap.Bool("hard", hard), zap.Int64("rows", n))
	response.JSON(c, http.StatusOK, dto.AffectedResponse{Affected: n}, nil)
}

// Purge godoc
// @Summary Purge expired soft-deleted alerts
// @Tags Broadcasts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /broadcasts/purge [post]
func (h *BroadcastHandler) Purge(c *gin.Context) {
	n, err := h.history.Purge(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.AffectedResponse{Affected: n}, nil)
}

// Export godoc
// @Summary Export alert history
// @Tags Broadcasts
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv, pdf or xlsx"
// @Param slot query int false "SIM slot"
// @Param include_deleted query bool false "Include soft-deleted rows"
// @Success 200 {file} file
// @Router /broadcasts/export [get]
func (h *BroadcastHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	result, err := h.exporter.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}
