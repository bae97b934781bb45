package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/logging"
)

func newTestStore(t *testing.T) *EntryStore {
	t.Helper()
	d, err := NewDriver(Config{
		ConnectionString: "sqlite://" + filepath.Join(t.TempDir(), "entries.db"),
		MaxOpenConns:     4,
	})
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	if err := d.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	s := NewEntryStore(d, 5*time.Second)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestInsertAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	ids, err := s.Insert(ctx,
		Record{Timestamp: ts, Level: logging.LevelInfo, Message: "first", Source: "client",
			Service: "web", ClientID: "c1", Data: json.RawMessage(`{"password":"***"}`)},
		Record{Level: logging.LevelError, Message: "second", Source: "client", Service: "web", ClientID: "c1"},
	)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if len(ids) != 2 || ids[0] == "" || ids[0] >= ids[1] {
		t.Fatalf("ids = %v, want two ascending IDs", ids)
	}

	records, err := s.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Message != "second" || records[1].Message != "first" {
		t.Errorf("order = %q, %q; want newest first", records[0].Message, records[1].Message)
	}

	first := records[1]
	if first.ID != ids[0] {
		t.Errorf("ID = %q, want %q", first.ID, ids[0])
	}
	if !first.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", first.Timestamp, ts)
	}
	if string(first.Data) != `{"password":"***"}` {
		t.Errorf("Data = %s", first.Data)
	}
	if first.ReceivedAt.IsZero() {
		t.Error("ReceivedAt should be set")
	}
	if records[0].Data != nil {
		t.Errorf("Data = %s, want nil", records[0].Data)
	}
	if records[0].Timestamp.IsZero() {
		t.Error("zero Timestamp should default to receive time")
	}
}

func TestInsertEmpty(t *testing.T) {
	s := newTestStore(t)
	ids, err := s.Insert(context.Background())
	if err != nil || ids != nil {
		t.Errorf("Insert() = %v, %v", ids, err)
	}
}

func TestListFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx,
		Record{Level: logging.LevelDebug, Message: "d", Source: "server", Service: "api"},
		Record{Level: logging.LevelInfo, Message: "i", Source: "client", Service: "web", ClientID: "a"},
		Record{Level: logging.LevelWarn, Message: "w", Source: "client", Service: "web", ClientID: "b"},
		Record{Level: logging.LevelError, Message: "e", Source: "server", Service: "api"},
	)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"e", "w", "i", "d"}},
		{"min warn", Filter{MinLevel: logging.LevelWarn}, []string{"e", "w"}},
		{"source", Filter{Source: "client"}, []string{"w", "i"}},
		{"service and level", Filter{Service: "api", MinLevel: logging.LevelInfo}, []string{"e"}},
		{"client id", Filter{ClientID: "a"}, []string{"i"}},
		{"limit", Filter{Limit: 2}, []string{"e", "w"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := s.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			got := make([]string, len(records))
			for i, r := range records {
				got[i] = r.Message
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}

			n, err := s.Count(ctx, Filter{MinLevel: tt.filter.MinLevel, Source: tt.filter.Source,
				Service: tt.filter.Service, ClientID: tt.filter.ClientID})
			if err != nil {
				t.Fatalf("Count: %v", err)
			}
			if tt.filter.Limit == 0 && n != len(tt.want) {
				t.Errorf("Count = %d, want %d", n, len(tt.want))
			}
		})
	}
}

func TestListBeforeCursor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		if _, err := s.Insert(ctx, Record{Level: logging.LevelInfo, Message: msg, Source: "client"}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	var pages [][]string
	before := ""
	for {
		records, err := s.List(ctx, Filter{Before: before, Limit: 2})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(records) == 0 {
			break
		}
		var page []string
		for _, r := range records {
			page = append(page, r.Message)
		}
		pages = append(pages, page)
		before = records[len(records)-1].ID
	}

	if len(pages) != 3 || pages[0][0] != "e" || pages[2][0] != "a" || len(pages[2]) != 1 {
		t.Errorf("pages = %v", pages)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 50},
		{-3, 50},
		{10, 10},
		{5000, 1000},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	pg := &EntryStore{driver: &baseDriver{dialect: DialectPostgres}}
	if got := pg.placeholders(1, 3); got != "$1, $2, $3" {
		t.Errorf("postgres placeholders = %q", got)
	}
	my := &EntryStore{driver: &baseDriver{dialect: DialectMySQL}}
	if got := my.placeholders(1, 3); got != "?, ?, ?" {
		t.Errorf("mysql placeholders = %q", got)
	}
}
