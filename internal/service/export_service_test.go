package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	"github.com/noah-isme/cellbroadcast-api/internal/policy"
	"github.com/noah-isme/cellbroadcast-api/internal/repository"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
	"github.com/noah-isme/cellbroadcast-api/pkg/export"
	"github.com/noah-isme/cellbroadcast-api/pkg/storage"
)

type failingHistory struct{}

func (failingHistory) List(ctx context.Context, filter repository.BroadcastFilter) ([]models.BroadcastRecord, int, error) {
	return nil, 0, errors.New("database is closed")
}

func newExportFixture(t *testing.T) (*ExportService, *repository.BroadcastRepository, string) {
	t.Helper()
	repo := repository.NewBroadcastRepository(newServiceDB(t), nil)
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	svc := NewExportService(repo, store, ExportConfig{Retention: time.Hour}, nil, nil, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 11, 6, 30, 0, 0, time.UTC) }
	return svc, repo, dir
}

func TestExportServiceCSV(t *testing.T) {
	svc, repo, dir := newExportFixture(t)
	ctx := context.Background()

	c := newTestClassifier()
	for _, raw := range []models.RawBroadcast{earthquakeRaw(), cmasRaw(models.CmasClassExtremeThreat, policy.MessageIDCmasExtremeFirst)} {
		record := c.Record(raw)
		_, err := repo.Insert(ctx, &record)
		require.NoError(t, err)
	}

	result, err := svc.Export(ctx, dto.ExportQuery{})
	require.NoError(t, err)
	assert.Equal(t, "broadcasts_20260311_063000.csv", result.Filename)
	assert.Equal(t, export.FormatCSV.ContentType(), result.ContentType)
	assert.Equal(t, 2, result.Rows)

	body := string(result.Body)
	assert.Contains(t, body, strings.Join(exportHeaders, ","))
	assert.Contains(t, body, "etws_earthquake")
	assert.Contains(t, body, "0x1100")
	assert.Contains(t, body, "emergency")

	saved, err := os.ReadFile(filepath.Join(dir, result.Filename))
	require.NoError(t, err)
	assert.Equal(t, result.Body, saved)
}

func TestExportServiceDocuments(t *testing.T) {
	svc, repo, _ := newExportFixture(t)
	ctx := context.Background()
	record := newTestClassifier().Record(earthquakeRaw())
	_, err := repo.Insert(ctx, &record)
	require.NoError(t, err)

	pdf, err := svc.Export(ctx, dto.ExportQuery{Format: "pdf"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf.Body), "%PDF"))
	assert.True(t, strings.HasSuffix(pdf.Filename, ".pdf"))

	xlsx, err := svc.Export(ctx, dto.ExportQuery{Format: "xlsx"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(xlsx.Body), "PK"))

	_, err = svc.Export(ctx, dto.ExportQuery{Format: "docx"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportServiceHistoryFailure(t *testing.T) {
	svc := NewExportService(failingHistory{}, nil, ExportConfig{}, nil, nil, nil, nil, nil)
	_, err := svc.Export(context.Background(), dto.ExportQuery{})
	assert.ErrorIs(t, err, appErrors.ErrStorageUnavailable)
}

func TestBuildHistoryDatasetBlanksUnknownLocation(t *testing.T) {
	record := models.BroadcastRecord{ID: 3, Location: models.UnknownLocation(), DeliveryTime: receivedAt, Body: "hi"}
	data := buildHistoryDataset([]models.BroadcastRecord{record})
	require.Len(t, data.Rows, 1)
	assert.Empty(t, data.Rows[0]["lac"])
	assert.Empty(t, data.Rows[0]["cid"])
	assert.Equal(t, "cb_other", data.Rows[0]["category"])
	assert.Equal(t, "normal", data.Rows[0]["priority"])
}
