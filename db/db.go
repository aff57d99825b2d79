package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/glebarez/go-sqlite"

	"go.hackfix.me/bulletin/db/types"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps sql.DB with additional context and initialization functionality.
type DB struct {
	*sql.DB
	ctx     context.Context
	timeNow func() time.Time
	path    string
}

var _ types.Querier = (*DB)(nil)

// Open creates and configures a new SQLite database connection.
func Open(ctx context.Context, path string, timeNow func() time.Time) (*DB, error) {
	sqliteDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed opening SQLite database: %w", err)
	}

	d := &DB{DB: sqliteDB, ctx: ctx, path: path, timeNow: timeNow}

	if strings.Contains(path, "mode=memory") || strings.Contains(path, ":memory:") {
		// Every new connection to an in-memory database would open a new empty
		// database, so keep the connection around.
		d.SetMaxOpenConns(1)
		d.SetMaxIdleConns(1)
		d.SetConnMaxLifetime(time.Duration(math.MaxInt64))
	}

	if _, err = d.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		_ = sqliteDB.Close()
		return nil, fmt.Errorf("failed enabling foreign key enforcement: %w", err)
	}

	return d, nil
}

// Init creates the database schema, and records the application version the
// database was initialized with.
func (d *DB) Init(appVersion string, logger *slog.Logger) (rerr error) {
	dblogger := logger.With("path", d.path)
	dblogger.Debug("initializing database")

	tx, err := d.BeginTx(d.ctx, nil)
	if err != nil {
		return fmt.Errorf("failed starting transaction: %w", err)
	}
	defer func() {
		if rerr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err = tx.ExecContext(d.ctx, stmt); err != nil {
			return fmt.Errorf("failed creating database schema: %w", err)
		}
	}

	_, err = tx.ExecContext(d.ctx,
		`INSERT INTO _meta (version, created_at) VALUES (?, ?)`,
		appVersion, d.timeNow().UTC())
	if err != nil {
		return fmt.Errorf("failed inserting into _meta: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed committing transaction: %w", err)
	}

	dblogger.Info("database initialized", "version", appVersion)

	return nil
}

// NewContext returns the main database context.
func (d *DB) NewContext() context.Context {
	return d.ctx
}

// TimeNow returns the current system time.
func (d *DB) TimeNow() time.Time {
	return d.timeNow()
}
