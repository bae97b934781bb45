// Package store persists ingested log entries. It supports PostgreSQL,
// MySQL and SQLite with dialect detection from the connection string.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
)

// DialectType represents the type of database dialect
type DialectType string

const (
	DialectPostgres DialectType = "postgres"
	DialectMySQL    DialectType = "mysql"
	DialectSQLite   DialectType = "sqlite"
)

// Driver is the database handle the entry store runs on.
type Driver interface {
	Connect(ctx context.Context) error
	Close() error
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context) (*sql.Tx, error)
	Ping(ctx context.Context) error
	Dialect() DialectType
}

// Config holds database connection configuration
type Config struct {
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

type baseDriver struct {
	db      *sql.DB
	dialect DialectType
	dsn     string
	config  Config
}

// Connect opens the pool and verifies it with a ping.
func (d *baseDriver) Connect(ctx context.Context) error {
	if d.dialect == DialectSQLite {
		if err := ensureSQLiteDir(d.dsn); err != nil {
			return err
		}
	}

	db, err := sql.Open(string(d.dialect), d.dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := d.config.MaxOpenConns
	if d.dialect == DialectSQLite {
		// SQLite allows a single writer.
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(d.config.MaxIdleConns)
	db.SetConnMaxLifetime(d.config.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	d.db = db
	return nil
}

func (d *baseDriver) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

func (d *baseDriver) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, query, args...)
}

func (d *baseDriver) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, query, args...)
}

func (d *baseDriver) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

func (d *baseDriver) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return d.db.BeginTx(ctx, nil)
}

func (d *baseDriver) Ping(ctx context.Context) error {
	if d.db == nil {
		return fmt.Errorf("database is not connected")
	}
	return d.db.PingContext(ctx)
}

func (d *baseDriver) Dialect() DialectType {
	return d.dialect
}

// NewDriver creates a new database driver based on the connection string
func NewDriver(config Config) (Driver, error) {
	dialect, dsn, err := detectDialect(config.ConnectionString)
	if err != nil {
		return nil, err
	}
	return &baseDriver{
		dialect: dialect,
		dsn:     dsn,
		config:  config,
	}, nil
}

// detectDialect detects the database dialect from the connection string
func detectDialect(connectionString string) (DialectType, string, error) {
	if connectionString == "" {
		return "", "", fmt.Errorf("connection string is empty")
	}

	lower := strings.ToLower(connectionString)

	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DialectPostgres, connectionString, nil
	}

	if strings.HasPrefix(lower, "mysql://") {
		return DialectMySQL, connectionString[len("mysql://"):], nil
	}

	if strings.HasPrefix(lower, "sqlite://") {
		dsn := connectionString[len("sqlite://"):]
		// Connections of one pool share a single in-memory database.
		if dsn == ":memory:" {
			dsn = "file::memory:?mode=memory&cache=shared"
		}
		return DialectSQLite, dsn, nil
	}

	// Standard MySQL DSN (user:password@tcp(host:port)/database)
	if strings.Contains(lower, "@tcp(") || strings.Contains(lower, "charset=") {
		return DialectMySQL, connectionString, nil
	}

	if lower == ":memory:" || strings.HasPrefix(lower, "file:") || strings.HasSuffix(lower, ".db") ||
		strings.HasSuffix(lower, ".sqlite") || strings.HasSuffix(lower, ".sqlite3") {
		return DialectSQLite, connectionString, nil
	}

	// Key/value PostgreSQL DSN
	if strings.Contains(lower, "host=") || strings.Contains(lower, "dbname=") {
		return DialectPostgres, connectionString, nil
	}

	return "", "", fmt.Errorf("unable to detect database dialect from connection string")
}

// ensureSQLiteDir creates the directory of a file-backed SQLite database.
func ensureSQLiteDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}
