package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
)

func newSettingRepoMock(t *testing.T) (*SettingRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlite")
	return NewSettingRepository(sqlxDB), mock, func() {
		sqlxDB.Close()
	}
}

func TestSettingRepositoryListByKeys(t *testing.T) {
	repo, mock, cleanup := newSettingRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"name", "slot", "value", "updated_at"}).
		AddRow("enable_alert_vibrate", 1, "false", int64(1700000000000))
	mock.ExpectQuery("SELECT name, slot, value").
		WithArgs("enable_alert_vibrate", 1).
		WillReturnRows(rows)

	result, err := repo.ListByKeys(context.Background(), []models.SettingKey{{Name: models.SettingAlertVibrate, Slot: 1}})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "false", result[0].Value)
	assert.Equal(t, int64(1700000000000), result[0].UpdatedAt.UnixMilli())
}

func TestSettingRepositoryBulkUpsertRollsBack(t *testing.T) {
	repo, mock, cleanup := newSettingRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO settings").
		WithArgs("enable_alert_tone", 0, "true", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO settings").
		WithArgs("alert_sound_duration", 0, "8", sqlmock.AnyArg()).
		WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	err := repo.BulkUpsert(context.Background(), []models.Setting{
		{Name: models.SettingAlertTone, Value: "true"},
		{Name: models.SettingAlertSoundDuration, Value: "8"},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingRepositorySQLite(t *testing.T) {
	repo := NewSettingRepository(newBroadcastRepo(t).db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.Setting{Name: models.SettingAlertReminderInterval, Slot: 0, Value: "2"}))
	require.NoError(t, repo.Upsert(ctx, &models.Setting{Name: models.SettingAlertReminderInterval, Slot: 0, Value: "15"}))
	require.NoError(t, repo.Upsert(ctx, &models.Setting{Name: models.SettingAlertReminderInterval, Slot: 1, Value: "1"}))

	got, err := repo.Get(ctx, models.SettingKey{Name: models.SettingAlertReminderInterval, Slot: 0})
	require.NoError(t, err)
	assert.Equal(t, "15", got.Value)

	slotOne, err := repo.ListBySlot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, slotOne, 1)
	assert.Equal(t, "1", slotOne[0].Value)

	_, err = repo.Get(ctx, models.SettingKey{Name: models.SettingAlertTone, Slot: 0})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
