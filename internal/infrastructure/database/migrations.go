package database

import (
	"database/sql"
	"fmt"
	"time"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
)

// sql-migrate dialect names
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// SnapshotTable holds one row per workspace snapshot key.
const SnapshotTable = "workspace_snapshots"

var migrations = map[string][]*migrate.Migration{
	DialectPostgres: {
		{
			Id: "0001_workspace_snapshots",
			Up: []string{`CREATE TABLE IF NOT EXISTS workspace_snapshots (
	snapshot_key TEXT PRIMARY KEY,
	payload JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`},
			Down: []string{`DROP TABLE IF EXISTS workspace_snapshots`},
		},
	},
	DialectSQLite: {
		{
			Id: "0001_workspace_snapshots",
			Up: []string{`CREATE TABLE IF NOT EXISTS workspace_snapshots (
	snapshot_key TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`},
			Down: []string{`DROP TABLE IF EXISTS workspace_snapshots`},
		},
	},
}

// Migrate applies the embedded migrations for dialect.
func Migrate(db *sql.DB, dialect string, log *zap.Logger) error {
	list, ok := migrations[dialect]
	if !ok {
		return fmt.Errorf("no migrations for dialect %q", dialect)
	}

	n, err := migrate.Exec(db, dialect, &migrate.MemoryMigrationSource{Migrations: list}, migrate.Up)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	if log != nil {
		log.Info("migrations applied", zap.String("dialect", dialect), zap.Int("count", n))
	}
	return nil
}

// MigrationState reports whether one embedded migration has been applied.
type MigrationState struct {
	ID        string
	AppliedAt *time.Time
}

// MigrationStatus lists the embedded migrations for dialect in order with
// their applied time, if any.
func MigrationStatus(db *sql.DB, dialect string) ([]MigrationState, error) {
	list, ok := migrations[dialect]
	if !ok {
		return nil, fmt.Errorf("no migrations for dialect %q", dialect)
	}

	records, err := migrate.GetMigrationRecords(db, dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration records: %w", err)
	}
	applied := make(map[string]time.Time, len(records))
	for _, r := range records {
		applied[r.Id] = r.AppliedAt
	}

	states := make([]MigrationState, len(list))
	for i, m := range list {
		states[i] = MigrationState{ID: m.Id}
		if at, ok := applied[m.Id]; ok {
			states[i].AppliedAt = &at
		}
	}
	return states, nil
}
