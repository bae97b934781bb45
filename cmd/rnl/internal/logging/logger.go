// Package logging provides structured logging with zerolog.
// It supports json, console and simple text formats, log levels, file
// output, request ID tracking, and redaction of sensitive fields through the
// mask package before anything is written.
package logging

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/mask"
)

func init() {
	zerolog.InterfaceMarshalFunc = json.Marshal
}

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatSimple  = "simple"
)

// Redactor masks a log payload. *mask.State and *mask.Engine implement it.
type Redactor interface {
	MaskAny(x any) (mask.Value, error)
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level Level

	// Format is the output format (json, console or simple)
	Format string

	// Output is the writer for logs (default: os.Stdout)
	Output io.Writer

	// FilePath is the path to the log file (if specified, Output is ignored)
	FilePath string

	// DualOutput writes console format to stdout and simple format to FilePath
	DualOutput bool

	// Source tags every record, "server" unless set
	Source string

	ServiceName string
	Env         string
	Version     string

	// Context is merged into the data of every record. Its service, app,
	// name, env and version keys are lifted to top-level fields instead.
	Context map[string]any

	// Colors enables ANSI colors in console format
	Colors bool

	// Hostname defaults to os.Hostname
	Hostname string

	// Redactor masks record data, mask.Default() unless set
	Redactor Redactor
}

// meta is the set of top-level fields that describe where a record came from.
type meta struct {
	source   string
	hostname string
	service  string
	env      string
	version  string
}

// prefix renders the human readable tag, e.g.
// "[SERVER] [Context:api] [Host:web-1] [Env:production] [v1.2.0]".
func (m meta) prefix() string {
	var b strings.Builder
	b.WriteString("[" + strings.ToUpper(m.source) + "]")
	if m.service != "" {
		b.WriteString(" [Context:" + m.service + "]")
	}
	if m.hostname != "" {
		b.WriteString(" [Host:" + m.hostname + "]")
	}
	if m.env != "" {
		b.WriteString(" [Env:" + m.env + "]")
	}
	if m.version != "" {
		b.WriteString(" [v" + m.version + "]")
	}
	return b.String()
}

var liftedKeys = []string{
	constants.ContextKeyService,
	constants.ContextKeyApp,
	constants.ContextKeyName,
	constants.ContextKeyEnv,
	constants.ContextKeyVersion,
}

// Logger wraps zerolog for structured logging
type Logger struct {
	logger   zerolog.Logger
	config   LoggerConfig
	redactor Redactor
	meta     meta
	fields   map[string]any
}

// NewLogger creates a new structured logger
func NewLogger(config LoggerConfig) *Logger {
	output := openOutput(config)

	if config.Level == "" {
		config.Level = LevelInfo
	}
	if config.Format == "" {
		config.Format = FormatSimple
	}
	if config.Source == "" {
		config.Source = constants.SourceServer
	}
	if config.Hostname == "" {
		config.Hostname, _ = os.Hostname()
	}

	var logger zerolog.Logger
	switch {
	case config.DualOutput && config.FilePath != "":
		// dualWriter handles formatting
		logger = zerolog.New(output)
	case config.Format == FormatJSON:
		logger = zerolog.New(output)
	case config.Format == FormatConsole:
		logger = zerolog.New(zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339, NoColor: !config.Colors})
	default:
		logger = zerolog.New(&simpleWriter{out: output})
	}
	logger = logger.Level(config.Level.zerolog()).With().Timestamp().Logger()

	l := &Logger{
		logger:   logger,
		config:   config,
		redactor: config.Redactor,
		meta:     contextMeta(config),
		fields:   maps.Clone(config.Context),
	}
	if l.redactor == nil {
		l.redactor = mask.Default()
	}
	// Lifted keys already appear as top-level fields.
	for _, k := range liftedKeys {
		delete(l.fields, k)
	}
	return l
}

func contextMeta(config LoggerConfig) meta {
	m := meta{
		source:   config.Source,
		hostname: config.Hostname,
		service:  config.ServiceName,
		env:      config.Env,
		version:  config.Version,
	}
	ctx := config.Context
	if m.service == "" {
		for _, k := range []string{constants.ContextKeyService, constants.ContextKeyApp, constants.ContextKeyName} {
			if s := contextString(ctx, k); s != "" {
				m.service = s
				break
			}
		}
	}
	if m.env == "" {
		m.env = contextString(ctx, constants.ContextKeyEnv)
	}
	if m.version == "" {
		m.version = contextString(ctx, constants.ContextKeyVersion)
	}
	return m
}

func contextString(ctx map[string]any, key string) string {
	v, ok := ctx[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// openOutput resolves the writer for config, falling back to stdout when the
// log file cannot be opened.
func openOutput(config LoggerConfig) io.Writer {
	if config.FilePath == "" {
		if config.Output != nil {
			return config.Output
		}
		return os.Stdout
	}

	file, err := openLogFile(config.FilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return os.Stdout
	}
	if config.DualOutput {
		return &dualWriter{
			consoleWriter: zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339, NoColor: !config.Colors},
			fileWriter:    &simpleWriter{out: file},
		}
	}
	return file
}

func openLogFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, constants.FilePermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return file, nil
}

// Level returns the minimum level the logger emits.
func (l *Logger) Level() Level { return l.config.Level }

// Source returns the source tag of the logger's records.
func (l *Logger) Source() string { return l.meta.source }

// WithContext returns a logger that tags records with the request ID in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	newLogger := *l
	if requestID := GetRequestID(ctx); requestID != "" {
		newLogger.logger = l.logger.With().Str(constants.ContextKeyRequestID, requestID).Logger()
	}
	return &newLogger
}

// WithField returns a logger with an additional data field
func (l *Logger) WithField(key string, value any) *Logger {
	return l.WithFields(map[string]any{key: value})
}

// WithFields returns a logger with additional data fields. Values are masked
// when a record is written, not here.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	newLogger := *l
	newLogger.fields = make(map[string]any, len(l.fields)+len(fields))
	maps.Copy(newLogger.fields, l.fields)
	maps.Copy(newLogger.fields, fields)
	return &newLogger
}

// Log writes msg at level with data merged over the logger's fields.
func (l *Logger) Log(level Level, msg string, data map[string]any) {
	l.emit(level, msg, data, l.meta)
}

// Forward re-emits an entry produced by another process, keeping its own
// source, host and service tags.
func (l *Logger) Forward(e Entry) {
	m := l.meta
	m.source = e.Source
	if m.source == "" {
		m.source = constants.SourceClient
	}
	if e.Hostname != "" {
		m.hostname = e.Hostname
	}
	if e.Service != "" {
		m.service = e.Service
	}
	if e.Env != "" {
		m.env = e.Env
	}
	if e.Version != "" {
		m.version = e.Version
	}

	level := e.Level
	if !level.Valid() {
		level = LevelInfo
	}
	target := l
	if e.RequestID != "" {
		target = l.WithContext(SetRequestID(context.Background(), e.RequestID))
	}
	target.emit(level, e.Message, e.Data, m)
}

func (l *Logger) emit(level Level, msg string, data map[string]any, m meta) {
	ev := l.logger.WithLevel(level.zerolog())
	if !ev.Enabled() {
		return
	}

	ev = ev.Str("source", m.source).Str("hostname", m.hostname)
	if m.service != "" {
		ev = ev.Str(constants.ContextKeyService, m.service)
	}
	if m.env != "" {
		ev = ev.Str(constants.ContextKeyEnv, m.env)
	}
	if m.version != "" {
		ev = ev.Str(constants.ContextKeyVersion, m.version)
	}

	if payload := l.payload(data); len(payload) > 0 {
		masked, err := l.redactor.MaskAny(payload)
		if err != nil {
			ev = ev.Str("data", constants.MaskPlaceholder).Str("mask_error", err.Error())
		} else {
			ev = ev.Interface("data", masked)
		}
	}

	if l.config.Format != FormatJSON {
		msg = m.prefix() + " " + msg
	}
	ev.Msg(msg)
}

// payload merges the logger's fields with data, data winning on conflict.
func (l *Logger) payload(data map[string]any) map[string]any {
	if len(l.fields)+len(data) == 0 {
		return nil
	}
	out := make(map[string]any, len(l.fields)+len(data))
	maps.Copy(out, l.fields)
	maps.Copy(out, data)
	return out
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.Log(LevelDebug, msg, nil)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...any) {
	l.Log(LevelDebug, fmt.Sprintf(format, args...), nil)
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.Log(LevelInfo, msg, nil)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...any) {
	l.Log(LevelInfo, fmt.Sprintf(format, args...), nil)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.Log(LevelWarn, msg, nil)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...any) {
	l.Log(LevelWarn, fmt.Sprintf(format, args...), nil)
}

// Error logs an error message
func (l *Logger) Error(msg string) {
	l.Log(LevelError, msg, nil)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...any) {
	l.Log(LevelError, fmt.Sprintf(format, args...), nil)
}

// ErrorWithErr logs an error with err flattened into error, name and stack
// data fields.
func (l *Logger) ErrorWithErr(msg string, err error) {
	info := mask.FromError(err).ErrorInfo()
	data := map[string]any{
		"error": info.Message,
		"name":  info.Name,
	}
	if info.Stack != "" {
		data["stack"] = info.Stack
	}
	l.Log(LevelError, msg, data)
}
