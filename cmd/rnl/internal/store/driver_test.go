package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestDetectDialect(t *testing.T) {
	tests := []struct {
		name    string
		conn    string
		dialect DialectType
		dsn     string
		wantErr bool
	}{
		{"postgres url", "postgres://u:p@localhost:5432/logs", DialectPostgres, "postgres://u:p@localhost:5432/logs", false},
		{"postgresql url", "postgresql://localhost/logs", DialectPostgres, "postgresql://localhost/logs", false},
		{"postgres key value", "host=localhost dbname=logs", DialectPostgres, "host=localhost dbname=logs", false},
		{"mysql url", "mysql://u:p@tcp(localhost:3306)/logs", DialectMySQL, "u:p@tcp(localhost:3306)/logs", false},
		{"mysql dsn", "u:p@tcp(localhost:3306)/logs?charset=utf8mb4", DialectMySQL, "u:p@tcp(localhost:3306)/logs?charset=utf8mb4", false},
		{"sqlite url", "sqlite:///var/lib/rnl/entries.db", DialectSQLite, "/var/lib/rnl/entries.db", false},
		{"sqlite memory", "sqlite://:memory:", DialectSQLite, "file::memory:?mode=memory&cache=shared", false},
		{"sqlite file uri", "file:test.db?cache=shared", DialectSQLite, "file:test.db?cache=shared", false},
		{"sqlite path", "./data/entries.sqlite3", DialectSQLite, "./data/entries.sqlite3", false},
		{"empty", "", "", "", true},
		{"unknown", "redis://localhost", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialect, dsn, err := detectDialect(tt.conn)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.conn)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if dialect != tt.dialect {
				t.Errorf("dialect = %q, want %q", dialect, tt.dialect)
			}
			if dsn != tt.dsn {
				t.Errorf("dsn = %q, want %q", dsn, tt.dsn)
			}
		})
	}
}

func TestDriverPingBeforeConnect(t *testing.T) {
	d, err := NewDriver(Config{ConnectionString: "sqlite://:memory:"})
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	if err := d.Ping(context.Background()); err == nil {
		t.Error("expected error pinging an unconnected driver")
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close on unconnected driver: %v", err)
	}
}

func TestDriverConnectCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "entries.db")
	d, err := NewDriver(Config{ConnectionString: "sqlite://" + path})
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	if err := d.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer d.Close()

	if d.Dialect() != DialectSQLite {
		t.Errorf("Dialect() = %q", d.Dialect())
	}
	if err := d.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
