package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
)

const upsertSettingSQL = `INSERT INTO settings (name, slot, value, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (name, slot)
DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

// SettingRepository persists per-slot setting overrides keyed by (name, slot).
type SettingRepository struct {
	db *sqlx.DB
}

// NewSettingRepository constructs the repository.
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

type settingRow struct {
	Name      string `db:"name"`
	Slot      int    `db:"slot"`
	Value     string `db:"value"`
	UpdatedAt int64  `db:"updated_at"`
}

func (r settingRow) toModel() models.Setting {
	return models.Setting{
		Name:      models.SettingName(r.Name),
		Slot:      r.Slot,
		Value:     r.Value,
		UpdatedAt: fromMillis(r.UpdatedAt),
	}
}

// ListBySlot returns the stored overrides of one slot.
func (r *SettingRepository) ListBySlot(ctx context.Context, slot int) ([]models.Setting, error) {
	var rows []settingRow
	query := r.db.Rebind(`SELECT name, slot, value, updated_at FROM settings WHERE slot = ? ORDER BY name ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, slot); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	settings := make([]models.Setting, len(rows))
	for i := range rows {
		settings[i] = rows[i].toModel()
	}
	return settings, nil
}

// ListByKeys returns stored overrides for the given keys.
func (r *SettingRepository) ListByKeys(ctx context.Context, keys []models.SettingKey) ([]models.Setting, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	clauses := make([]string, len(keys))
	args := make([]interface{}, 0, len(keys)*2)
	for i, key := range keys {
		clauses[i] = "(name = ? AND slot = ?)"
		args = append(args, string(key.Name), key.Slot)
	}
	query := r.db.Rebind(`SELECT name, slot, value, updated_at FROM settings WHERE ` +
		strings.Join(clauses, " OR ") + ` ORDER BY slot ASC, name ASC`)
	var rows []settingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list settings by key: %w", err)
	}
	settings := make([]models.Setting, len(rows))
	for i := range rows {
		settings[i] = rows[i].toModel()
	}
	return settings, nil
}

// Get fetches a single stored setting.
func (r *SettingRepository) Get(ctx context.Context, key models.SettingKey) (*models.Setting, error) {
	var row settingRow
	query := r.db.Rebind(`SELECT name, slot, value, updated_at FROM settings WHERE name = ? AND slot = ?`)
	if err := r.db.GetContext(ctx, &row, query, string(key.Name), key.Slot); err != nil {
		return nil, err
	}
	setting := row.toModel()
	return &setting, nil
}

// Upsert inserts or updates a setting.
func (r *SettingRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	setting.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(upsertSettingSQL),
		string(setting.Name), setting.Slot, setting.Value, toMillis(setting.UpdatedAt)); err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}

// BulkUpsert performs upserts within a transaction.
func (r *SettingRepository) BulkUpsert(ctx context.Context, settings []models.Setting) error {
	if len(settings) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk setting tx: %w", err)
	}
	query := tx.Rebind(upsertSettingSQL)
	now := time.Now().UTC().Truncate(time.Millisecond)
	for i := range settings {
		settings[i].UpdatedAt = now
		if _, err := tx.ExecContext(ctx, query,
			string(settings[i].Name), settings[i].Slot, settings[i].Value, toMillis(now)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bulk upsert setting: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk setting tx: %w", err)
	}
	return nil
}
