package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
)

const channelColumns = `id, slot, name, channel, enabled, created_at, updated_at`

// ChannelRepository persists user-managed custom channels.
type ChannelRepository struct {
	db *sqlx.DB
}

// NewChannelRepository constructs the repository.
func NewChannelRepository(db *sqlx.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

type channelRow struct {
	ID        int64  `db:"id"`
	Slot      int    `db:"slot"`
	Name      string `db:"name"`
	Channel   int    `db:"channel"`
	Enabled   int    `db:"enabled"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

func (r channelRow) toModel() models.CustomChannel {
	return models.CustomChannel{
		ID:        r.ID,
		Slot:      r.Slot,
		Name:      r.Name,
		Channel:   r.Channel,
		Enabled:   r.Enabled != 0,
		CreatedAt: fromMillis(r.CreatedAt),
		UpdatedAt: fromMillis(r.UpdatedAt),
	}
}

// List returns the custom channels of a slot ordered by channel number.
func (r *ChannelRepository) List(ctx context.Context, slot int) ([]models.CustomChannel, error) {
	var rows []channelRow
	query := r.db.Rebind(`SELECT ` + channelColumns + ` FROM channels WHERE slot = ? ORDER BY channel ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, slot); err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	channels := make([]models.CustomChannel, len(rows))
	for i := range rows {
		channels[i] = rows[i].toModel()
	}
	return channels, nil
}

// FindByChannel looks a channel number up within a slot.
func (r *ChannelRepository) FindByChannel(ctx context.Context, slot, channel int) (*models.CustomChannel, error) {
	var row channelRow
	query := r.db.Rebind(`SELECT ` + channelColumns + ` FROM channels WHERE slot = ? AND channel = ?`)
	if err := r.db.GetContext(ctx, &row, query, slot, channel); err != nil {
		return nil, err
	}
	ch := row.toModel()
	return &ch, nil
}

// FindByID fetches a channel by id.
func (r *ChannelRepository) FindByID(ctx context.Context, id int64) (*models.CustomChannel, error) {
	var row channelRow
	query := r.db.Rebind(`SELECT ` + channelColumns + ` FROM channels WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	ch := row.toModel()
	return &ch, nil
}

// Create inserts a channel and sets its id and timestamps.
func (r *ChannelRepository) Create(ctx context.Context, ch *models.CustomChannel) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	query := r.db.Rebind(`INSERT INTO channels (slot, name, channel, enabled, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, ch.Slot, ch.Name, ch.Channel, boolInt(ch.Enabled), toMillis(now), toMillis(now)).Scan(&id); err != nil {
		return fmt.Errorf("create channel: %w", err)
	}
	ch.ID = id
	ch.CreatedAt = now
	ch.UpdatedAt = now
	return nil
}

// Update rewrites name, number and enabled flag. It reports whether the row existed.
func (r *ChannelRepository) Update(ctx context.Context, ch *models.CustomChannel) (bool, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	query := r.db.Rebind(`UPDATE channels SET name = ?, channel = ?, enabled = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, ch.Name, ch.Channel, boolInt(ch.Enabled), toMillis(now), ch.ID)
	if err != nil {
		return false, fmt.Errorf("update channel: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update channel rows affected: %w", err)
	}
	ch.UpdatedAt = now
	return n > 0, nil
}

// Delete removes a channel. It reports whether the row existed.
func (r *ChannelRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM channels WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete channel: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete channel rows affected: %w", err)
	}
	return n > 0, nil
}
