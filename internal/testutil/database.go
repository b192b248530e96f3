package testutil

import (
	"database/sql"
	"testing"

	"github.com/iliyamo/pdfsum/internal/config"
	"github.com/iliyamo/pdfsum/internal/database"
	"github.com/iliyamo/pdfsum/internal/database/migrations"
)

// NewTestDB creates a new in-memory SQLite database with all migrations applied.
// The database is automatically closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite3", SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := migrations.MigrateUp(db, "sqlite3"); err != nil {
		db.Close()
		t.Fatalf("failed to apply migrations: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})
	return db
}
