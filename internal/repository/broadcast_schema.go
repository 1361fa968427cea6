package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
	"github.com/noah-isme/cellbroadcast-api/internal/policy"
)

// Schema versions of the broadcast database.
const (
	SchemaVersionLegacy  = 1
	SchemaVersionClassed = 10
	SchemaVersionCurrent = 11
)

const (
	broadcastsTable    = "broadcasts"
	oldBroadcastsTable = "old_broadcasts"
	versionTable       = "schema_version"
)

type dialect struct {
	name        string
	autoID      string
	tableExists string
}

var (
	sqliteDialect = dialect{
		name:        "sqlite",
		autoID:      "INTEGER PRIMARY KEY AUTOINCREMENT",
		tableExists: `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
	}
	postgresDialect = dialect{
		name:        "postgres",
		autoID:      "BIGSERIAL PRIMARY KEY",
		tableExists: `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?`,
	}
)

func dialectFor(db *sqlx.DB) dialect {
	if strings.HasPrefix(db.DriverName(), "postgres") || db.DriverName() == "pgx" {
		return postgresDialect
	}
	return sqliteDialect
}

func (d dialect) createBroadcasts(table string) string {
	return fmt.Sprintf(`CREATE TABLE %s (
	id %s,
	slot INTEGER NOT NULL DEFAULT 0,
	geo_scope INTEGER NOT NULL,
	plmn TEXT,
	lac INTEGER,
	cid INTEGER,
	serial_number INTEGER NOT NULL,
	service_category INTEGER NOT NULL,
	language TEXT,
	body TEXT NOT NULL,
	delivery_time BIGINT NOT NULL,
	message_read INTEGER NOT NULL DEFAULT 0,
	format INTEGER NOT NULL,
	priority INTEGER NOT NULL,
	etws_warning_type INTEGER,
	etws_emergency_user_alert INTEGER,
	etws_popup INTEGER,
	cmas_message_class INTEGER,
	cmas_category INTEGER,
	cmas_response_type INTEGER,
	cmas_severity INTEGER,
	cmas_urgency INTEGER,
	cmas_certainty INTEGER,
	deleted INTEGER NOT NULL DEFAULT 0,
	deleted_at BIGINT
)`, table, d.autoID)
}

func (d dialect) createChannels() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS channels (
	id %s,
	slot INTEGER NOT NULL DEFAULT 0,
	name TEXT NOT NULL,
	channel INTEGER NOT NULL,
	enabled INTEGER NOT NULL DEFAULT 1,
	created_at BIGINT NOT NULL,
	updated_at BIGINT NOT NULL,
	UNIQUE (slot, channel)
)`, d.autoID)
}

const createSettings = `CREATE TABLE IF NOT EXISTS settings (
	name TEXT NOT NULL,
	slot INTEGER NOT NULL DEFAULT 0,
	value TEXT NOT NULL,
	updated_at BIGINT NOT NULL,
	PRIMARY KEY (name, slot)
)`

const createDeliveryIndex = `CREATE INDEX IF NOT EXISTS idx_broadcasts_delivery_time ON broadcasts (delivery_time)`

// Migrator brings the broadcast database to the current schema version.
type Migrator struct {
	db      *sqlx.DB
	dialect dialect
	logger  *zap.Logger
}

// NewMigrator constructs a migrator.
func NewMigrator(db *sqlx.DB, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{db: db, dialect: dialectFor(db), logger: logger}
}

// CurrentVersion reports the detected schema version, 0 for an empty database.
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	hasVersion, err := m.tableExists(ctx, versionTable)
	if err != nil {
		return 0, err
	}
	if hasVersion {
		var version int
		err := m.db.GetContext(ctx, &version, `SELECT version FROM schema_version`)
		if err == nil {
			return version, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("read schema version: %w", err)
		}
	}

	hasBroadcasts, err := m.tableExists(ctx, broadcastsTable)
	if err != nil || !hasBroadcasts {
		return 0, err
	}
	// an unversioned broadcasts table predates version tracking
	return SchemaVersionLegacy, nil
}

// Migrate upgrades to SchemaVersionCurrent inside a single transaction.
// On failure the transaction is rolled back and the prior schema stays intact.
func (m *Migrator) Migrate(ctx context.Context) error {
	from, err := m.CurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("detect schema version: %w", err)
	}
	if from == SchemaVersionCurrent {
		return nil
	}
	if from > SchemaVersionCurrent {
		return fmt.Errorf("schema version %d is newer than supported %d", from, SchemaVersionCurrent)
	}

	m.logger.Info("migrating broadcast schema", zap.Int("from", from), zap.Int("to", SchemaVersionCurrent))

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}

	copied, err := m.apply(ctx, tx, from)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration tx: %w", err)
	}
	m.logger.Info("broadcast schema migrated", zap.Int("version", SchemaVersionCurrent), zap.Int("rows_copied", copied))
	return nil
}

func (m *Migrator) apply(ctx context.Context, tx *sqlx.Tx, from int) (int, error) {
	copied := 0
	switch {
	case from == 0:
		if _, err := tx.ExecContext(ctx, m.dialect.createBroadcasts(broadcastsTable)); err != nil {
			return 0, fmt.Errorf("create broadcasts: %w", err)
		}
	case from < SchemaVersionClassed:
		n, err := m.upgradeLegacy(ctx, tx)
		if err != nil {
			return 0, err
		}
		copied = n
	case from < SchemaVersionCurrent:
		for _, stmt := range []string{
			`ALTER TABLE broadcasts ADD COLUMN deleted INTEGER NOT NULL DEFAULT 0`,
			`ALTER TABLE broadcasts ADD COLUMN deleted_at BIGINT`,
		} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return 0, fmt.Errorf("add soft delete columns: %w", err)
			}
		}
	}

	for _, stmt := range []string{createDeliveryIndex, m.dialect.createChannels(), createSettings,
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`,
		`DELETE FROM schema_version`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("prepare schema: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schema_version (version) VALUES (?)`), SchemaVersionCurrent); err != nil {
		return 0, fmt.Errorf("record schema version: %w", err)
	}
	return copied, nil
}

// legacyRow mirrors the v1 table, where every column is nullable. NULL
// integers read as 0.
type legacyRow struct {
	GeoScope     sql.NullInt64  `db:"geo_scope"`
	SerialNumber sql.NullInt64  `db:"serial_number"`
	MessageCode  sql.NullInt64  `db:"message_code"`
	MessageID    sql.NullInt64  `db:"message_id"`
	Language     sql.NullString `db:"language"`
	Body         sql.NullString `db:"body"`
	Date         sql.NullInt64  `db:"date"`
	Read         sql.NullInt64  `db:"read"`
}

// upgradeLegacy renames the old table aside, creates the new one, copies every
// row with re-derived classification and drops the old table.
func (m *Migrator) upgradeLegacy(ctx context.Context, tx *sqlx.Tx) (int, error) {
	steps := []string{
		`DROP TABLE IF EXISTS ` + oldBroadcastsTable,
		`ALTER TABLE ` + broadcastsTable + ` RENAME TO ` + oldBroadcastsTable,
		m.dialect.createBroadcasts(broadcastsTable),
	}
	for _, stmt := range steps {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("legacy upgrade: %w", err)
		}
	}

	var rows []legacyRow
	const selectLegacy = `SELECT geo_scope, serial_number, message_code, message_id, language, body, date, read
FROM old_broadcasts ORDER BY _id ASC`
	if err := tx.SelectContext(ctx, &rows, selectLegacy); err != nil {
		return 0, fmt.Errorf("read legacy broadcasts: %w", err)
	}

	insert := tx.Rebind(insertBroadcastSQL)
	for _, old := range rows {
		record := legacyRecord(old)
		if _, err := tx.ExecContext(ctx, insert, toBroadcastRow(record).args()...); err != nil {
			return 0, fmt.Errorf("copy legacy broadcast: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DROP TABLE `+oldBroadcastsTable); err != nil {
		return 0, fmt.Errorf("drop legacy table: %w", err)
	}
	return len(rows), nil
}

func legacyRecord(old legacyRow) models.BroadcastRecord {
	geoScope := int(old.GeoScope.Int64)
	messageID := int(old.MessageID.Int64)
	etws, cmas := policy.LegacyInfo(messageID)
	priority := models.PriorityNormal
	if etws != nil || cmas != nil {
		priority = models.PriorityEmergency
	}
	return models.BroadcastRecord{
		GeographicalScope: models.GeographicalScope(geoScope),
		SerialNumber:      policy.LegacySerial(geoScope, int(old.MessageCode.Int64), int(old.SerialNumber.Int64)),
		Location:          models.UnknownLocation(),
		ServiceCategory:   messageID,
		Language:          old.Language.String,
		Body:              old.Body.String,
		Format:            models.MessageFormat3GPP,
		Priority:          priority,
		Etws:              etws,
		Cmas:              cmas,
		DeliveryTime:      fromMillis(old.Date.Int64),
		Read:              old.Read.Int64 != 0,
	}
}

func (m *Migrator) tableExists(ctx context.Context, name string) (bool, error) {
	var count int
	if err := m.db.GetContext(ctx, &count, m.db.Rebind(m.dialect.tableExists), name); err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return count > 0, nil
}
