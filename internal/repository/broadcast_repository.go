package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
)

// SoftDeleteRetention is how long soft-deleted broadcasts are kept before purge.
const SoftDeleteRetention = 12 * time.Hour

const broadcastColumns = `id, slot, geo_scope, plmn, lac, cid, serial_number, service_category, language, body,
delivery_time, message_read, format, priority, etws_warning_type, etws_emergency_user_alert, etws_popup,
cmas_message_class, cmas_category, cmas_response_type, cmas_severity, cmas_urgency, cmas_certainty,
deleted, deleted_at`

const insertBroadcastSQL = `INSERT INTO broadcasts (slot, geo_scope, plmn, lac, cid, serial_number, service_category,
language, body, delivery_time, message_read, format, priority, etws_warning_type, etws_emergency_user_alert,
etws_popup, cmas_message_class, cmas_category, cmas_response_type, cmas_severity, cmas_urgency, cmas_certainty,
deleted, deleted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// BroadcastFilter narrows history queries.
type BroadcastFilter struct {
	Page              int
	PageSize          int
	PresidentialFirst bool
	IncludeDeleted    bool
	Slot              *int
}

// BroadcastRepository is the durable broadcast history. Writes are serialised
// against each other; reads run concurrently and never see a partial write.
type BroadcastRepository struct {
	db     *sqlx.DB
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewBroadcastRepository constructs the repository. Call Migrate before use.
func NewBroadcastRepository(db *sqlx.DB, logger *zap.Logger) *BroadcastRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BroadcastRepository{db: db, logger: logger}
}

// Migrate upgrades the schema while holding the write lock.
func (r *BroadcastRepository) Migrate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return NewMigrator(r.db, r.logger).Migrate(ctx)
}

// Insert stores a broadcast and sets its row id.
func (r *BroadcastRepository) Insert(ctx context.Context, record *models.BroadcastRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id int64
	query := r.db.Rebind(insertBroadcastSQL + ` RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, query, toBroadcastRow(*record).args()...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert broadcast: %w", err)
	}
	record.ID = id
	return id, nil
}

// Get fetches one broadcast by row id, including soft-deleted rows.
func (r *BroadcastRepository) Get(ctx context.Context, id int64) (*models.BroadcastRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var row broadcastRow
	query := r.db.Rebind(`SELECT ` + broadcastColumns + ` FROM broadcasts WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, fmt.Errorf("get broadcast %d: %w", id, err)
	}
	record := row.toModel()
	return &record, nil
}

// List returns broadcasts newest first, optionally with presidential alerts ahead of the rest.
func (r *BroadcastRepository) List(ctx context.Context, filter BroadcastFilter) ([]models.BroadcastRecord, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	where := ` WHERE 1 = 1`
	args := make([]interface{}, 0, 3)
	if !filter.IncludeDeleted {
		where += ` AND deleted = 0`
	}
	if filter.Slot != nil {
		where += ` AND slot = ?`
		args = append(args, *filter.Slot)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM broadcasts`+where), args...); err != nil {
		return nil, 0, fmt.Errorf("count broadcasts: %w", err)
	}

	order := ` ORDER BY delivery_time DESC, id DESC`
	if filter.PresidentialFirst {
		order = ` ORDER BY CASE WHEN cmas_message_class = 0 THEN 0 ELSE 1 END, delivery_time DESC, id DESC`
	}
	query := `SELECT ` + broadcastColumns + ` FROM broadcasts` + where + order
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.PageSize, (page-1)*filter.PageSize)
	}

	var rows []broadcastRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list broadcasts: %w", err)
	}
	records := make([]models.BroadcastRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].toModel()
	}
	return records, total, nil
}

// UnreadCount counts visible unread broadcasts.
func (r *BroadcastRepository) UnreadCount(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM broadcasts WHERE message_read = 0 AND deleted = 0`); err != nil {
		return 0, fmt.Errorf("count unread broadcasts: %w", err)
	}
	return count, nil
}

// MarkRead flags one broadcast as read. It reports whether a row changed.
func (r *BroadcastRepository) MarkRead(ctx context.Context, id int64) (bool, error) {
	n, err := r.exec(ctx, "mark broadcast read", `UPDATE broadcasts SET message_read = 1 WHERE id = ?`, id)
	return n > 0, err
}

// MarkReadByDeliveryTime flags broadcasts delivered at the given instant as read.
func (r *BroadcastRepository) MarkReadByDeliveryTime(ctx context.Context, deliveredAt time.Time) (int64, error) {
	return r.exec(ctx, "mark broadcast read by time", `UPDATE broadcasts SET message_read = 1 WHERE delivery_time = ?`, toMillis(deliveredAt))
}

// MarkDeleted soft-deletes one broadcast after purging expired rows.
func (r *BroadcastRepository) MarkDeleted(ctx context.Context, id int64, now time.Time) (bool, error) {
	if _, err := r.PurgeExpiredSoftDeleted(ctx, now); err != nil {
		return false, err
	}
	n, err := r.exec(ctx, "soft delete broadcast",
		`UPDATE broadcasts SET deleted = 1, deleted_at = ? WHERE id = ? AND deleted = 0`, toMillis(now), id)
	return n > 0, err
}

// MarkAllDeleted soft-deletes every visible broadcast after purging expired rows.
func (r *BroadcastRepository) MarkAllDeleted(ctx context.Context, now time.Time) (int64, error) {
	if _, err := r.PurgeExpiredSoftDeleted(ctx, now); err != nil {
		return 0, err
	}
	return r.exec(ctx, "soft delete all broadcasts",
		`UPDATE broadcasts SET deleted = 1, deleted_at = ? WHERE deleted = 0`, toMillis(now))
}

// DeleteAll hard-deletes every broadcast.
func (r *BroadcastRepository) DeleteAll(ctx context.Context) (int64, error) {
	return r.exec(ctx, "delete all broadcasts", `DELETE FROM broadcasts`)
}

// PurgeExpiredSoftDeleted hard-deletes rows soft-deleted more than
// SoftDeleteRetention before now. Rows without a deletion time fall back to
// their delivery time.
func (r *BroadcastRepository) PurgeExpiredSoftDeleted(ctx context.Context, now time.Time) (int64, error) {
	cutoff := toMillis(now.Add(-SoftDeleteRetention))
	n, err := r.exec(ctx, "purge soft deleted broadcasts",
		`DELETE FROM broadcasts WHERE deleted = 1 AND COALESCE(deleted_at, delivery_time) < ?`, cutoff)
	if err == nil && n > 0 {
		r.logger.Info("purged expired broadcasts", zap.Int64("rows", n))
	}
	return n, err
}

func (r *BroadcastRepository) exec(ctx context.Context, op, query string, args ...interface{}) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return n, nil
}

type broadcastRow struct {
	ID                     int64          `db:"id"`
	Slot                   int            `db:"slot"`
	GeoScope               int            `db:"geo_scope"`
	PLMN                   sql.NullString `db:"plmn"`
	LAC                    sql.NullInt64  `db:"lac"`
	CID                    sql.NullInt64  `db:"cid"`
	SerialNumber           int            `db:"serial_number"`
	ServiceCategory        int            `db:"service_category"`
	Language               sql.NullString `db:"language"`
	Body                   string         `db:"body"`
	DeliveryTime           int64          `db:"delivery_time"`
	Read                   int            `db:"message_read"`
	Format                 int            `db:"format"`
	Priority               int            `db:"priority"`
	EtwsWarningType        sql.NullInt64  `db:"etws_warning_type"`
	EtwsEmergencyUserAlert sql.NullInt64  `db:"etws_emergency_user_alert"`
	EtwsPopup              sql.NullInt64  `db:"etws_popup"`
	CmasMessageClass       sql.NullInt64  `db:"cmas_message_class"`
	CmasCategory           sql.NullInt64  `db:"cmas_category"`
	CmasResponseType       sql.NullInt64  `db:"cmas_response_type"`
	CmasSeverity           sql.NullInt64  `db:"cmas_severity"`
	CmasUrgency            sql.NullInt64  `db:"cmas_urgency"`
	CmasCertainty          sql.NullInt64  `db:"cmas_certainty"`
	Deleted                int            `db:"deleted"`
	DeletedAt              sql.NullInt64  `db:"deleted_at"`
}

func toBroadcastRow(r models.BroadcastRecord) broadcastRow {
	row := broadcastRow{
		ID:              r.ID,
		Slot:            r.Slot,
		GeoScope:        int(r.GeographicalScope),
		PLMN:            nullString(r.Location.PLMN),
		LAC:             nullLocation(r.Location.LAC),
		CID:             nullLocation(r.Location.CID),
		SerialNumber:    r.SerialNumber,
		ServiceCategory: r.ServiceCategory,
		Language:        nullString(r.Language),
		Body:            r.Body,
		DeliveryTime:    toMillis(r.DeliveryTime),
		Read:            boolInt(r.Read),
		Format:          int(r.Format),
		Priority:        int(r.Priority),
		Deleted:         boolInt(r.Deleted),
	}
	if r.Etws != nil {
		row.EtwsWarningType = sql.NullInt64{Int64: int64(r.Etws.WarningType), Valid: true}
		row.EtwsEmergencyUserAlert = sql.NullInt64{Int64: int64(boolInt(r.Etws.EmergencyUserAlert)), Valid: true}
		row.EtwsPopup = sql.NullInt64{Int64: int64(boolInt(r.Etws.Popup)), Valid: true}
	}
	if r.Cmas != nil {
		row.CmasMessageClass = sql.NullInt64{Int64: int64(r.Cmas.MessageClass), Valid: true}
		row.CmasCategory = nullUnknown(int(r.Cmas.Category))
		row.CmasResponseType = nullUnknown(int(r.Cmas.ResponseType))
		row.CmasSeverity = nullUnknown(int(r.Cmas.Severity))
		row.CmasUrgency = nullUnknown(int(r.Cmas.Urgency))
		row.CmasCertainty = nullUnknown(int(r.Cmas.Certainty))
	}
	if r.DeletedAt != nil {
		row.DeletedAt = sql.NullInt64{Int64: toMillis(*r.DeletedAt), Valid: true}
	}
	return row
}

// args follows the column order of insertBroadcastSQL.
func (row broadcastRow) args() []interface{} {
	return []interface{}{
		row.Slot, row.GeoScope, row.PLMN, row.LAC, row.CID, row.SerialNumber, row.ServiceCategory,
		row.Language, row.Body, row.DeliveryTime, row.Read, row.Format, row.Priority,
		row.EtwsWarningType, row.EtwsEmergencyUserAlert, row.EtwsPopup,
		row.CmasMessageClass, row.CmasCategory, row.CmasResponseType, row.CmasSeverity, row.CmasUrgency, row.CmasCertainty,
		row.Deleted, row.DeletedAt,
	}
}

func (row broadcastRow) toModel() models.BroadcastRecord {
	record := models.BroadcastRecord{
		ID:                row.ID,
		Slot:              row.Slot,
		GeographicalScope: models.GeographicalScope(row.GeoScope),
		SerialNumber:      row.SerialNumber,
		Location: models.Location{
			PLMN: row.PLMN.String,
			LAC:  intOrUnknown(row.LAC),
			CID:  intOrUnknown(row.CID),
		},
		ServiceCategory: row.ServiceCategory,
		Language:        row.Language.String,
		Body:            row.Body,
		Format:          models.MessageFormat(row.Format),
		Priority:        models.MessagePriority(row.Priority),
		DeliveryTime:    fromMillis(row.DeliveryTime),
		Read:            row.Read != 0,
		Deleted:         row.Deleted != 0,
	}
	if row.EtwsWarningType.Valid {
		record.Etws = &models.EtwsInfo{
			WarningType:        models.EtwsWarningType(row.EtwsWarningType.Int64),
			EmergencyUserAlert: row.EtwsEmergencyUserAlert.Int64 != 0,
			Popup:              row.EtwsPopup.Int64 != 0,
		}
	}
	if row.CmasMessageClass.Valid {
		record.Cmas = &models.CmasInfo{
			MessageClass: models.CmasMessageClass(row.CmasMessageClass.Int64),
			Category:     models.CmasCategory(intOrUnknown(row.CmasCategory)),
			ResponseType: models.CmasResponseType(intOrUnknown(row.CmasResponseType)),
			Severity:     models.CmasSeverity(intOrUnknown(row.CmasSeverity)),
			Urgency:      models.CmasUrgency(intOrUnknown(row.CmasUrgency)),
			Certainty:    models.CmasCertainty(intOrUnknown(row.CmasCertainty)),
		}
	}
	if row.DeletedAt.Valid {
		at := fromMillis(row.DeletedAt.Int64)
		record.DeletedAt = &at
	}
	return record
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullLocation(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v >= 0}
}

func nullUnknown(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != -1}
}

func intOrUnknown(v sql.NullInt64) int {
	if !v.Valid {
		return -1
	}
	return int(v.Int64)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
