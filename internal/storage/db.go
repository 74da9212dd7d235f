// Package storage is the SQLite-backed data provider. The bot only ever
// reads from it at request time; writes happen through the seed helpers
// used by the data sync job and tests.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver for database/sql

	"github.com/campuskit/campus-wabot-go/internal/metrics"
)

// DB wraps the SQLite database connection.
type DB struct {
	conn    *sql.DB
	path    string
	metrics *metrics.Metrics
}

// New creates a new database connection and initializes the schema.
func New(dbPath string) (*DB, error) {
	// Ensure directory exists (skip for in-memory database)
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)

	// WAL mode for better concurrency between webhook goroutines
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=30000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := InitSchema(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Ready verifies the database is reachable. Used by the readiness probe.
func (db *DB) Ready(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// CountStudents returns the number of enrolled students. Used by the
// readiness probe to surface whether the data sync has run.
func (db *DB) CountStudents(ctx context.Context) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&n)
	return n, err
}

// Conn returns the underlying *sql.DB connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// SetMetrics sets the recorder used for query observability.
func (db *DB) SetMetrics(m *metrics.Metrics) {
	db.metrics = m
}

// recordQuery reports one repository query outcome when metrics are wired.
func (db *DB) recordQuery(name string, err error, empty bool) {
	if db.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	db.metrics.RecordRepositoryQuery(name, status)
	if err == nil && empty {
		db.metrics.RecordRepositoryEmpty(name)
	}
}

// NewTestDB creates an in-memory database for testing.
func NewTestDB() (*DB, error) {
	return New(":memory:")
}
