package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestNewSQLiteDB_AppliesMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "workspace.db")
	db, err := NewSQLiteDB(context.Background(), path)
	if err != nil {
		t.Fatalf("NewSQLiteDB failed: %v", err)
	}
	defer db.Close()

	states, err := MigrationStatus(db, DialectSQLite)
	if err != nil {
		t.Fatalf("MigrationStatus failed: %v", err)
	}
	if len(states) != 1 || states[0].AppliedAt == nil {
		t.Fatalf("expected one applied migration got %+v", states)
	}

	if err := Migrate(db, DialectSQLite, nil); err != nil {
		t.Fatalf("re-running migrations failed: %v", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + SnapshotTable).Scan(&n); err != nil {
		t.Fatalf("snapshot table missing: %v", err)
	}
}

func TestMigrate_UnknownDialect(t *testing.T) {
	if err := Migrate(nil, "mssql", nil); err == nil {
		t.Fatalf("expected error for unknown dialect")
	}
	if _, err := MigrationStatus(nil, "mssql"); err == nil {
		t.Fatalf("expected error for unknown dialect")
	}
}
