package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	"github.com/noah-isme/cellbroadcast-api/internal/repository"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
	"github.com/noah-isme/cellbroadcast-api/pkg/export"
)

const exportPageSize = 500

var exportHeaders = []string{
	"id", "slot", "delivered_at", "service_category", "category", "serial_number",
	"plmn", "lac", "cid", "language", "priority", "read", "deleted", "body",
}

type historyLister interface {
	List(ctx context.Context, filter repository.BroadcastFilter) ([]models.BroadcastRecord, int, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type documentRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	Retention time.Duration
}

// ExportResult is a rendered history export.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// ExportService renders the alert history and keeps a copy on disk until retention expires.
type ExportService struct {
	history   historyLister
	storage   fileStorage
	csv       csvRenderer
	pdf       documentRenderer
	xlsx      documentRenderer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers get the defaults.
func NewExportService(history historyLister, storage fileStorage, cfg ExportConfig, validate *validator.Validate, logger *zap.Logger, csv csvRenderer, pdf, xlsx documentRenderer) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = &export.PDFExporter{Weights: map[string]float64{"body": 6, "delivered_at": 2.2, "category": 1.6}}
	}
	if xlsx == nil {
		xlsx = &export.XLSXExporter{Widths: map[string]float64{"body": 80, "delivered_at": 22, "category": 18}}
	}
	return &ExportService{
		history:   history,
		storage:   storage,
		csv:       csv,
		pdf:       pdf,
		xlsx:      xlsx,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Export renders the history in the requested format.
func (s *ExportService) Export(ctx context.Context, query dto.ExportQuery) (*ExportResult, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export query")
	}
	format, err := export.ParseFormat(query.Format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export format")
	}

	records, err := s.collect(ctx, query)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to read history")
	}
	dataset := buildHistoryDataset(records)
	title := "Cell broadcast history"

	var body []byte
	switch format {
	case export.FormatPDF:
		body, err = s.pdf.Render(dataset, title)
	case export.FormatXLSX:
		body, err = s.xlsx.Render(dataset, title)
	default:
		body, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("broadcasts_%s%s", s.now().UTC().Format("20060102_150405"), format.Extension())
	if s.storage != nil {
		s.cleanup()
		if _, err := s.storage.Save(filename, body); err != nil {
			s.logger.Warn("failed to keep export copy", zap.String("file", filename), zap.Error(err))
		}
	}
	return &ExportResult{Filename: filename, ContentType: format.ContentType(), Body: body, Rows: len(records)}, nil
}

// Cleanup removes stored exports older than the retention window.
func (s *ExportService) Cleanup() ([]string, error) {
	if s.storage == nil {
		return nil, nil
	}
	return s.storage.CleanupOlderThan(s.cfg.Retention)
}

func (s *ExportService) cleanup() {
	removed, err := s.Cleanup()
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
}

func (s *ExportService) collect(ctx context.Context, query dto.ExportQuery) ([]models.BroadcastRecord, error) {
	var out []models.BroadcastRecord
	for page := 1; ; page++ {
		records, total, err := s.history.List(ctx, repository.BroadcastFilter{
			Page:           page,
			PageSize:       exportPageSize,
			IncludeDeleted: query.IncludeDeleted,
			Slot:           query.Slot,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
		if len(records) < exportPageSize || len(out) >= total {
			return out, nil
		}
	}
}

func buildHistoryDataset(records []models.BroadcastRecord) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, map[string]string{
			"id":               strconv.FormatInt(r.ID, 10),
			"slot":             strconv.Itoa(r.Slot),
			"delivered_at":     r.DeliveryTime.UTC().Format(time.RFC3339),
			"service_category": fmt.Sprintf("0x%04X", r.ServiceCategory),
			"category":         string(DialogTitleFor(r.Etws, r.Cmas, r.IsEmergency())),
			"serial_number":    fmt.Sprintf("0x%04X", r.SerialNumber),
			"plmn":             r.Location.PLMN,
			"lac":              locationText(r.Location.LAC),
			"cid":              locationText(r.Location.CID),
			"language":         r.Language,
			"priority":         priorityText(r.Priority),
			"read":             strconv.FormatBool(r.Read),
			"deleted":          strconv.FormatBool(r.Deleted),
			"body":             FormatBody(r),
		})
	}
	return export.Dataset{Headers: append([]string(nil), exportHeaders...), Rows: rows}
}

func locationText(v int) string {
	if v < 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func priorityText(p models.MessagePriority) string {
	switch p {
	case models.PriorityInteractive:
		return "interactive"
	case models.PriorityUrgent:
		return "urgent"
	case models.PriorityEmergency:
		return "emergency"
	default:
		return "normal"
	}
}
