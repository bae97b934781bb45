package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/logging"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/ulid"
)

const entriesTable = "log_entries"

// Record is a stored log entry. Data holds the already masked payload.
type Record struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"ts"`
	Level      logging.Level   `json:"level"`
	Message    string          `json:"message"`
	Source     string          `json:"source"`
	Hostname   string          `json:"hostname,omitempty"`
	Service    string          `json:"service,omitempty"`
	Env        string          `json:"env,omitempty"`
	Version    string          `json:"version,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
	ClientID   string          `json:"client_id,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
}

// Filter narrows List and Count. Zero values match everything.
type Filter struct {
	MinLevel logging.Level
	Source   string
	Service  string
	ClientID string
	// Before returns only entries with an ID lower than this ULID.
	Before string
	Limit  int
}

// EntryStore reads and writes log entries.
type EntryStore struct {
	driver  Driver
	timeout time.Duration
}

// NewEntryStore wraps a connected driver. A positive timeout bounds every
// query.
func NewEntryStore(driver Driver, timeout time.Duration) *EntryStore {
	return &EntryStore{driver: driver, timeout: timeout}
}

func (s *EntryStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Migrate creates the entries table if it does not exist.
func (s *EntryStore) Migrate(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	text := "TEXT"
	index := ""
	if s.driver.Dialect() == DialectMySQL {
		text = "MEDIUMTEXT"
		index = ",\n\tINDEX idx_log_entries_source_level (source, level_rank)"
	}

	ddl := `CREATE TABLE IF NOT EXISTS ` + entriesTable + ` (
	id VARCHAR(26) NOT NULL PRIMARY KEY,
	ts BIGINT NOT NULL,
	level VARCHAR(8) NOT NULL,
	level_rank INTEGER NOT NULL,
	message ` + text + ` NOT NULL,
	source VARCHAR(16) NOT NULL,
	hostname VARCHAR(255) NOT NULL DEFAULT '',
	service VARCHAR(255) NOT NULL DEFAULT '',
	env VARCHAR(64) NOT NULL DEFAULT '',
	version VARCHAR(64) NOT NULL DEFAULT '',
	request_id VARCHAR(128) NOT NULL DEFAULT '',
	client_id VARCHAR(255) NOT NULL DEFAULT '',
	data ` + text + `,
	received_at BIGINT NOT NULL` + index + `
)`
	if _, err := s.driver.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create %s: %w", entriesTable, err)
	}

	if s.driver.Dialect() != DialectMySQL {
		idx := `CREATE INDEX IF NOT EXISTS idx_log_entries_source_level ON ` + entriesTable + ` (source, level_rank)`
		if _, err := s.driver.Exec(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// Insert stores records in one transaction, assigning IDs and receive
// times. It returns the assigned IDs in input order.
func (s *EntryStore) Insert(ctx context.Context, records ...Record) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO ` + entriesTable +
		` (id, ts, level, level_rank, message, source, hostname, service, env, version, request_id, client_id, data, received_at)` +
		` VALUES (` + s.placeholders(1, 14) + `)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]string, len(records))
	now := time.Now().UTC()
	for i, r := range records {
		id := ulid.GenerateWithTime(now)
		ts := r.Timestamp
		if ts.IsZero() {
			ts = now
		}
		var data any
		if len(r.Data) > 0 {
			data = string(r.Data)
		}
		if _, err := stmt.ExecContext(ctx,
			id, ts.UnixMilli(), string(r.Level), levelRank(r.Level), r.Message, r.Source,
			r.Hostname, r.Service, r.Env, r.Version, r.RequestID, r.ClientID, data, now.UnixMilli(),
		); err != nil {
			return nil, fmt.Errorf("failed to insert entry %d: %w", i, err)
		}
		ids[i] = id
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit entries: %w", err)
	}
	return ids, nil
}

// List returns matching entries, newest first.
func (s *EntryStore) List(ctx context.Context, f Filter) ([]Record, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where, args := s.where(f)
	query := `SELECT id, ts, level, message, source, hostname, service, env, version, request_id, client_id, data, received_at FROM ` +
		entriesTable + where + ` ORDER BY id DESC LIMIT ` + strconv.Itoa(clampLimit(f.Limit))

	rows, err := s.driver.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			r          Record
			level      string
			ts, recvAt int64
			data       sql.NullString
		)
		if err := rows.Scan(&r.ID, &ts, &level, &r.Message, &r.Source, &r.Hostname, &r.Service,
			&r.Env, &r.Version, &r.RequestID, &r.ClientID, &data, &recvAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		r.Level = logging.Level(level)
		r.Timestamp = time.UnixMilli(ts).UTC()
		r.ReceivedAt = time.UnixMilli(recvAt).UTC()
		if data.Valid {
			r.Data = json.RawMessage(data.String)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}
	return records, nil
}

// Count returns the number of matching entries, ignoring the limit.
func (s *EntryStore) Count(ctx context.Context, f Filter) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where, args := s.where(f)
	var n int
	if err := s.driver.QueryRow(ctx, `SELECT COUNT(*) FROM `+entriesTable+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

// Ping checks the underlying database.
func (s *EntryStore) Ping(ctx context.Context) error {
	return s.driver.Ping(ctx)
}

func (s *EntryStore) where(f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, cond+" "+s.placeholder(len(args)))
	}

	if f.MinLevel != "" {
		add("level_rank >=", levelRank(f.MinLevel))
	}
	if f.Source != "" {
		add("source =", f.Source)
	}
	if f.Service != "" {
		add("service =", f.Service)
	}
	if f.ClientID != "" {
		add("client_id =", f.ClientID)
	}
	if f.Before != "" {
		add("id <", f.Before)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// placeholder returns the n-th (1-based) bind parameter for the dialect.
func (s *EntryStore) placeholder(n int) string {
	if s.driver.Dialect() == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (s *EntryStore) placeholders(from, count int) string {
	ph := make([]string, count)
	for i := range ph {
		ph[i] = s.placeholder(from + i)
	}
	return strings.Join(ph, ", ")
}

func levelRank(l logging.Level) int {
	switch l {
	case logging.LevelDebug:
		return 0
	case logging.LevelWarn:
		return 2
	case logging.LevelError:
		return 3
	default:
		return 1
	}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return constants.DefaultListLimit
	case limit > constants.MaxListLimit:
		return constants.MaxListLimit
	default:
		return limit
	}
}
