// Package client is the logger used by processes that ship their records to
// an rnl ingest server. Records are written locally and, when a Transport is
// configured, masked, buffered and sent in batches.
package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/logging"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/mask"
)

// Config holds configuration for the client logger
type Config struct {
	Level       logging.Level
	ServiceName string
	Env         string
	Version     string
	Context     map[string]any

	// Output receives the local records (default: os.Stdout)
	Output io.Writer

	// Format of the local records, simple unless set
	Format string

	// Redactor masks data before it is written or shipped, mask.Default()
	// unless set
	Redactor logging.Redactor

	// Transport ships entries; nil keeps the logger local only
	Transport     Transport
	BatchSize     int
	FlushInterval time.Duration
}

// Logger writes records locally and ships them through its Transport.
type Logger struct {
	local    *logging.Logger
	config   Config
	redactor logging.Redactor
	hostname string

	mu      sync.Mutex
	pending []logging.Entry

	flush     chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a client logger. With a Transport it starts a goroutine that
// flushes every FlushInterval; stop it with Close.
func New(cfg Config) *Logger {
	if cfg.Format == "" {
		cfg.Format = logging.FormatSimple
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = constants.DefaultClientBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = constants.ClientFlushInterval
	}
	if cfg.Redactor == nil {
		cfg.Redactor = mask.Default()
	}
	hostname, _ := os.Hostname()

	l := &Logger{
		local: logging.NewLogger(logging.LoggerConfig{
			Level:       cfg.Level,
			Format:      cfg.Format,
			Output:      cfg.Output,
			Source:      constants.SourceClient,
			ServiceName: cfg.ServiceName,
			Env:         cfg.Env,
			Version:     cfg.Version,
			Context:     cfg.Context,
			Hostname:    hostname,
			Redactor:    cfg.Redactor,
		}),
		config:   cfg,
		redactor: cfg.Redactor,
		hostname: hostname,
		flush:    make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	if cfg.Transport != nil {
		go l.run()
	} else {
		close(l.done)
	}
	return l
}

func (l *Logger) Debug(msg string, data map[string]any) { l.Log(logging.LevelDebug, msg, data) }
func (l *Logger) Info(msg string, data map[string]any)  { l.Log(logging.LevelInfo, msg, data) }
func (l *Logger) Warn(msg string, data map[string]any)  { l.Log(logging.LevelWarn, msg, data) }
func (l *Logger) Error(msg string, data map[string]any) { l.Log(logging.LevelError, msg, data) }

// Log writes the record locally and queues it for shipping.
func (l *Logger) Log(level logging.Level, msg string, data map[string]any) {
	if !l.local.Level().Enabled(level) {
		return
	}
	l.local.Log(level, msg, data)

	if l.config.Transport == nil {
		return
	}

	entry := logging.Entry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   msg,
		Source:    constants.SourceClient,
		Hostname:  l.hostname,
		Service:   l.config.ServiceName,
		Env:       l.config.Env,
		Version:   l.config.Version,
		Data:      l.maskData(data),
	}

	l.mu.Lock()
	l.pending = append(l.pending, entry)
	full := len(l.pending) >= l.config.BatchSize
	l.mu.Unlock()

	if full {
		select {
		case l.flush <- struct{}{}:
		default:
		}
	}
}

// maskData masks data so nothing sensitive leaves the process.
func (l *Logger) maskData(data map[string]any) map[string]any {
	if len(data) == 0 {
		return nil
	}
	masked, err := l.redactor.MaskAny(data)
	if err != nil {
		return map[string]any{
			"data":       constants.MaskPlaceholder,
			"mask_error": err.Error(),
		}
	}
	if m, ok := masked.Interface().(map[string]any); ok {
		return m
	}
	return nil
}

// Pending returns the number of entries waiting to be shipped.
func (l *Logger) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Flush ships the queued entries. Entries of a failed batch are dropped and
// the error is returned.
func (l *Logger) Flush(ctx context.Context) error {
	if l.config.Transport == nil {
		return nil
	}

	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.mu.Unlock()

	for len(batch) > 0 {
		n := min(len(batch), l.config.BatchSize)
		if err := l.config.Transport.Send(ctx, batch[:n]); err != nil {
			return fmt.Errorf("failed to ship %d entries: %w", len(batch), err)
		}
		batch = batch[n:]
	}
	return nil
}

func (l *Logger) run() {
	defer close(l.done)

	ticker := time.NewTicker(l.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
		case <-l.flush:
		}
		l.flushInBackground()
	}
}

func (l *Logger) flushInBackground() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.ClientHTTPTimeout)
	defer cancel()
	if err := l.Flush(ctx); err != nil {
		l.local.Log(logging.LevelWarn, "Log shipping failed", map[string]any{"error": err.Error()})
	}
}

// Close stops the flush goroutine and ships what is left.
func (l *Logger) Close(ctx context.Context) error {
	l.closeOnce.Do(func() {
		close(l.stop)
	})

	select {
	case <-l.done:
	default:
		select {
		case <-l.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return l.Flush(ctx)
}
