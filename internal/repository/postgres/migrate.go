package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/pratik-mahalle/mediremind/internal/pkg/logger"
)

// goose keeps its base FS and dialect in package state
var gooseMu sync.Mutex

// RunMigrations applies all pending goose migrations found at the root of
// migrationsFS.
func RunMigrations(ctx context.Context, db *DB, migrationsFS fs.FS, log *logger.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	dialect := "postgres"
	if db.Driver == DriverSQLite {
		dialect = "sqlite3"
	}

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if log == nil {
		log = logger.Nop()
	}
	goose.SetLogger(gooseLogger{log: log.With("component", "migrations")})

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db.DB, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// MigrationVersion returns the current schema version
func MigrationVersion(ctx context.Context, db *DB, migrationsFS fs.FS) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	dialect := "postgres"
	if db.Driver == DriverSQLite {
		dialect = "sqlite3"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.GetDBVersionContext(ctx, db.DB)
}

type gooseLogger struct {
	log *logger.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Fatalf(strings.TrimSuffix(format, "\n"), v...)
}
