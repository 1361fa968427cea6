package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
	"github.com/noah-isme/cellbroadcast-api/pkg/config"
	"github.com/noah-isme/cellbroadcast-api/pkg/database"
)

func newSQLiteDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.NewSQLite(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "cellbroadcasts.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newBroadcastRepo(t *testing.T) *BroadcastRepository {
	t.Helper()
	repo := NewBroadcastRepository(newSQLiteDB(t), nil)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

var baseTime = time.Date(2026, 3, 11, 5, 46, 0, 0, time.UTC)

func plmnWideRecord() models.BroadcastRecord {
	return models.BroadcastRecord{
		GeographicalScope: models.GeoScopePLMNWide,
		SerialNumber:      0x1234,
		Location:          models.Location{PLMN: "310260", LAC: models.LocationUnknown, CID: models.LocationUnknown},
		ServiceCategory:   4370,
		Body:              "Presidential alert",
		Format:            models.MessageFormat3GPP,
		Priority:          models.PriorityEmergency,
		Cmas:              &models.CmasInfo{MessageClass: models.CmasClassPresidential, Category: models.CmasCategoryUnknown, ResponseType: models.CmasResponseUnknown, Severity: models.CmasSeverityUnknown, Urgency: models.CmasUrgencyUnknown, Certainty: models.CmasCertaintyUnknown},
		DeliveryTime:      baseTime,
	}
}

func cellWideRecord() models.BroadcastRecord {
	return models.BroadcastRecord{
		Slot:              1,
		GeographicalScope: models.GeoScopeCellWide,
		SerialNumber:      0x3001,
		Location:          models.Location{PLMN: "44010", LAC: 0x2a, CID: 0x1b3},
		ServiceCategory:   0x1100,
		Language:          "ja",
		Body:              "Earthquake warning",
		Format:            models.MessageFormat3GPP,
		Priority:          models.PriorityEmergency,
		Etws:              &models.EtwsInfo{WarningType: models.EtwsWarningEarthquake, EmergencyUserAlert: true, Popup: true},
		DeliveryTime:      baseTime.Add(time.Minute),
	}
}

func TestBroadcastRepositoryRoundTrip(t *testing.T) {
	repo := newBroadcastRepo(t)
	ctx := context.Background()

	cmas := models.BroadcastRecord{
		GeographicalScope: models.GeoScopeLAWide,
		SerialNumber:      7,
		Location:          models.Location{LAC: 12, CID: models.LocationUnknown},
		ServiceCategory:   0x1113,
		Language:          "en",
		Body:              "Flash flood",
		Format:            models.MessageFormat3GPP2,
		Priority:          models.PriorityEmergency,
		Cmas: &models.CmasInfo{
			MessageClass: models.CmasClassExtremeThreat,
			Category:     models.CmasCategoryMet,
			ResponseType: models.CmasResponseEvacuate,
			Severity:     models.CmasSeverityExtreme,
			Urgency:      models.CmasUrgencyImmediate,
			Certainty:    models.CmasCertaintyObserved,
		},
		DeliveryTime: baseTime.Add(2*time.Minute + 123*time.Millisecond),
		Read:         true,
	}

	for _, want := range []models.BroadcastRecord{plmnWideRecord(), cellWideRecord(), cmas} {
		record := want
		id, err := repo.Insert(ctx, &record)
		require.NoError(t, err)
		require.Equal(t, id, record.ID)

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		want.ID = id
		assert.True(t, want.DeliveryTime.Equal(got.DeliveryTime))
		got.DeliveryTime = want.DeliveryTime
		assert.Equal(t, want, *got)
	}
}

func TestBroadcastRepositoryGetMissing(t *testing.T) {
	repo := newBroadcastRepo(t)

	_, err := repo.Get(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestBroadcastRepositoryListOrdering(t *testing.T) {
	repo := newBroadcastRepo(t)
	ctx := context.Background()

	presidential := plmnWideRecord()
	newer := cellWideRecord()
	newest := cellWideRecord()
	newest.SerialNumber++
	newest.DeliveryTime = baseTime.Add(time.Hour)
	for _, r := range []*models.BroadcastRecord{&presidential, &newer, &newest} {
		_, err := repo.Insert(ctx, r)
		require.NoError(t, err)
	}

	records, total, err := repo.List(ctx, BroadcastFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []int64{newest.ID, newer.ID, presidential.ID}, ids(records))

	records, _, err = repo.List(ctx, BroadcastFilter{PresidentialFirst: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{presidential.ID, newest.ID, newer.ID}, ids(records))

	records, total, err = repo.List(ctx, BroadcastFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []int64{presidential.ID}, ids(records))

	slot := 1
	records, total, err = repo.List(ctx, BroadcastFilter{Slot: &slot})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, records, 2)
}

func TestBroadcastRepositoryReadFlags(t *testing.T) {
	repo := newBroadcastRepo(t)
	ctx := context.Background()

	a, b := plmnWideRecord(), cellWideRecord()
	_, err := repo.Insert(ctx, &a)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, &b)
	require.NoError(t, err)

	count, err := repo.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	changed, err := repo.MarkRead(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	n, err := repo.MarkReadByDeliveryTime(ctx, b.DeliveryTime)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	count, err = repo.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	changed, err = repo.MarkRead(ctx, 999)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestBroadcastRepositoryRetention(t *testing.T) {
	repo := newBroadcastRepo(t)
	ctx := context.Background()
	now := baseTime.Add(24 * time.Hour)

	old := cellWideRecord()
	young := cellWideRecord()
	young.SerialNumber++
	live := plmnWideRecord()
	for _, r := range []*models.BroadcastRecord{&old, &young, &live} {
		_, err := repo.Insert(ctx, r)
		require.NoError(t, err)
	}

	changed, err := repo.MarkDeleted(ctx, old.ID, now.Add(-13*time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = repo.MarkDeleted(ctx, young.ID, now.Add(-1*time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)

	purged, err := repo.PurgeExpiredSoftDeleted(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = repo.Get(ctx, old.ID)
	assert.Error(t, err)
	got, err := repo.Get(ctx, young.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	require.NotNil(t, got.DeletedAt)
	assert.True(t, got.DeletedAt.Equal(now.Add(-1*time.Hour)))

	n, err := repo.MarkAllDeleted(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	records, total, err := repo.List(ctx, BroadcastFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, records)

	records, _, err = repo.List(ctx, BroadcastFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestBroadcastRepositoryRetentionUsesDeletionTime(t *testing.T) {
	repo := newBroadcastRepo(t)
	ctx := context.Background()
	now := baseTime.Add(48 * time.Hour)

	stale := cellWideRecord()
	stale.DeliveryTime = now.Add(-24 * time.Hour)
	_, err := repo.Insert(ctx, &stale)
	require.NoError(t, err)

	changed, err := repo.MarkDeleted(ctx, stale.ID, now)
	require.NoError(t, err)
	require.True(t, changed)

	purged, err := repo.PurgeExpiredSoftDeleted(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, purged)
	_, err = repo.Get(ctx, stale.ID)
	require.NoError(t, err)

	purged, err = repo.PurgeExpiredSoftDeleted(ctx, now.Add(SoftDeleteRetention+time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestBroadcastRepositoryRetentionWithoutDeletionTime(t *testing.T) {
	repo := newBroadcastRepo(t)
	ctx := context.Background()
	now := baseTime.Add(24 * time.Hour)

	orphan := cellWideRecord()
	orphan.Deleted = true
	_, err := repo.Insert(ctx, &orphan)
	require.NoError(t, err)

	purged, err := repo.PurgeExpiredSoftDeleted(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestBroadcastRepositoryMarkDeletedPurgesFirst(t *testing.T) {
	repo := newBroadcastRepo(t)
	ctx := context.Background()
	now := baseTime.Add(24 * time.Hour)

	expired := cellWideRecord()
	expired.Deleted = true
	deletedAt := baseTime
	expired.DeletedAt = &deletedAt
	target := plmnWideRecord()
	for _, r := range []*models.BroadcastRecord{&expired, &target} {
		_, err := repo.Insert(ctx, r)
		require.NoError(t, err)
	}

	changed, err := repo.MarkDeleted(ctx, target.ID, now)
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = repo.Get(ctx, expired.ID)
	assert.Error(t, err)

	changed, err = repo.MarkDeleted(ctx, target.ID, now)
	require.NoError(t, err)
	assert.False(t, changed)

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestBroadcastRepositoryInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewBroadcastRepository(sqlx.NewDb(db, "sqlite"), nil)

	mock.ExpectQuery("INSERT INTO broadcasts").WillReturnError(errors.New("disk I/O error"))

	record := plmnWideRecord()
	_, err = repo.Insert(context.Background(), &record)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert broadcast")
	assert.Zero(t, record.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBroadcastRepositoryInsertArgs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewBroadcastRepository(sqlx.NewDb(db, "sqlite"), nil)

	record := plmnWideRecord()
	mock.ExpectQuery("INSERT INTO broadcasts").
		WithArgs(0, 1, "310260", nil, nil, 0x1234, 4370, nil, "Presidential alert", baseTime.UnixMilli(), 0, 1, 3,
			nil, nil, nil, int64(0), nil, nil, nil, nil, nil, 0, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := repo.Insert(context.Background(), &record)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func ids(records []models.BroadcastRecord) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
