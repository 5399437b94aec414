package testutil

import (
	"context"
	"testing"

	"github.com/pratik-mahalle/mediremind/internal/pkg/logger"
	"github.com/pratik-mahalle/mediremind/internal/repository/postgres"
	"github.com/pratik-mahalle/mediremind/migrations"
)

// NewTestDB creates an in-memory SQLite database with all migrations
// applied. It is closed when the test ends.
func NewTestDB(t *testing.T) *postgres.DB {
	t.Helper()

	sqlDB, err := postgres.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db := &postgres.DB{DB: sqlDB, Driver: postgres.DriverSQLite}
	t.Cleanup(func() { _ = db.Close() })

	if err := postgres.RunMigrations(context.Background(), db, migrations.GetFS(), logger.Nop()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// NewTestLogger returns a logger that only reports errors
func NewTestLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}
