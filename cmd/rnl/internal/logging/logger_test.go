package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/mask"
)

func newJSONLogger(buf *bytes.Buffer, config LoggerConfig) *Logger {
	config.Format = FormatJSON
	config.Output = buf
	if config.Hostname == "" {
		config.Hostname = "test-host"
	}
	if config.Level == "" {
		config.Level = LevelDebug
	}
	if config.Redactor == nil {
		config.Redactor = mask.NewEngine(mask.DefaultPolicy())
	}
	return NewLogger(config)
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to parse JSON log: %v\nOutput: %s", err, line)
		}
		entries = append(entries, entry)
	}
	return entries
}

func decodeOne(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	entries := decodeLines(t, buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %s", len(entries), buf.String())
	}
	return entries[0]
}

func TestNewLogger(t *testing.T) {
	t.Run("Default config", func(t *testing.T) {
		logger := NewLogger(LoggerConfig{})

		if logger == nil {
			t.Fatal("NewLogger returned nil")
		}
		if logger.Level() != LevelInfo {
			t.Errorf("Expected default level info, got %s", logger.Level())
		}
		if logger.config.Format != FormatSimple {
			t.Errorf("Expected default format simple, got %s", logger.config.Format)
		}
		if logger.Source() != constants.SourceServer {
			t.Errorf("Expected default source server, got %s", logger.Source())
		}
		if logger.redactor != mask.Default() {
			t.Error("Expected the process-wide mask state as default redactor")
		}
	})

	t.Run("Custom config", func(t *testing.T) {
		logger := NewLogger(LoggerConfig{
			Level:       LevelDebug,
			Source:      constants.SourceClient,
			ServiceName: "test-service",
			Version:     "1.0.0",
		})

		if logger.Level() != LevelDebug {
			t.Errorf("Expected level debug, got %s", logger.Level())
		}
		if logger.meta.service != "test-service" || logger.meta.version != "1.0.0" {
			t.Errorf("Unexpected meta %+v", logger.meta)
		}
	})
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LoggerConfig{Level: LevelInfo})

	logger.Info("Test message")

	entry := decodeOne(t, &buf)
	if entry["message"] != "Test message" {
		t.Errorf("Expected message 'Test message', got '%v'", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("Expected level 'info', got '%v'", entry["level"])
	}
	if entry["source"] != "server" {
		t.Errorf("Expected source 'server', got '%v'", entry["source"])
	}
	if entry["hostname"] != "test-host" {
		t.Errorf("Expected hostname 'test-host', got '%v'", entry["hostname"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("Expected a time field")
	}
	if _, ok := entry["data"]; ok {
		t.Error("Expected no data field for a record without data")
	}
}

func TestLogger_Levels(t *testing.T) {
	testCases := []struct {
		level         Level
		logFunc       func(*Logger)
		expectedLevel string
	}{
		{LevelDebug, func(l *Logger) { l.Debug("debug msg") }, "debug"},
		{LevelInfo, func(l *Logger) { l.Info("info msg") }, "info"},
		{LevelWarn, func(l *Logger) { l.Warn("warn msg") }, "warn"},
		{LevelError, func(l *Logger) { l.Error("error msg") }, "error"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.level), func(t *testing.T) {
			var buf bytes.Buffer
			logger := newJSONLogger(&buf, LoggerConfig{Level: LevelDebug})

			tc.logFunc(logger)

			entry := decodeOne(t, &buf)
			if entry["level"] != tc.expectedLevel {
				t.Errorf("Expected level '%s', got '%v'", tc.expectedLevel, entry["level"])
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LoggerConfig{Level: LevelWarn})

	logger.Debug("debug msg")
	logger.Info("info msg")
	if buf.Len() != 0 {
		t.Errorf("Expected no output below warn, got '%s'", buf.String())
	}

	logger.Warnf("warn %d", 1)
	logger.Errorf("error %d", 2)
	if got := len(decodeLines(t, &buf)); got != 2 {
		t.Errorf("Expected 2 log lines, got %d", got)
	}
}

func TestLogger_MasksData(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LoggerConfig{})

	logger.WithFields(map[string]any{
		"password": "hunter22",
		"user":     "ana",
	}).WithField("profile", map[string]any{"email": "ana@example.com", "age": 31}).Info("login")

	entry := decodeOne(t, &buf)
	data, ok := entry["data"].(map[string]any)
	if !ok {
		t.Fatalf("Expected data object, got %v", entry["data"])
	}
	if data["password"] != "hun***r22" {
		t.Errorf("Expected masked password, got %v", data["password"])
	}
	if data["user"] != "ana" {
		t.Errorf("Expected user 'ana', got %v", data["user"])
	}
	profile := data["profile"].(map[string]any)
	if profile["email"] != "ana***com" {
		t.Errorf("Expected masked email, got %v", profile["email"])
	}
	if profile["age"] != float64(31) {
		t.Errorf("Expected age 31, got %v", profile["age"])
	}
}

func TestLogger_LogDataOverridesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LoggerConfig{}).WithField("attempt", 1)

	logger.Log(LevelInfo, "retry", map[string]any{"attempt": 2})

	data := decodeOne(t, &buf)["data"].(map[string]any)
	if data["attempt"] != float64(2) {
		t.Errorf("Expected attempt 2, got %v", data["attempt"])
	}
}

func TestLogger_WithFieldsDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := newJSONLogger(&buf, LoggerConfig{})
	_ = base.WithField("temp", "x")

	base.Info("plain")
	if _, ok := decodeOne(t, &buf)["data"]; ok {
		t.Error("Expected derived logger fields not to leak into the base logger")
	}
}

func TestLogger_ContextLifting(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LoggerConfig{
		Context: map[string]any{
			"app":     "checkout",
			"env":     "production",
			"version": "1.2.0",
			"region":  "eu-west-1",
		},
	})

	logger.Log(LevelInfo, "started", map[string]any{"name": "worker-1"})

	entry := decodeOne(t, &buf)
	if entry["service"] != "checkout" {
		t.Errorf("Expected service 'checkout', got %v", entry["service"])
	}
	if entry["env"] != "production" {
		t.Errorf("Expected env 'production', got %v", entry["env"])
	}
	if entry["version"] != "1.2.0" {
		t.Errorf("Expected version '1.2.0', got %v", entry["version"])
	}

	data := entry["data"].(map[string]any)
	for _, k := range []string{"app", "env", "version"} {
		if _, ok := data[k]; ok {
			t.Errorf("Expected context key %q to be lifted out of data", k)
		}
	}
	if data["region"] != "eu-west-1" {
		t.Errorf("Expected region in data, got %v", data["region"])
	}
	if data["name"] != "worker-1" {
		t.Errorf("Expected record data 'name' to be kept, got %v", data["name"])
	}
}

func TestLogger_ServiceNamePrecedence(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LoggerConfig{
		ServiceName: "explicit",
		Context:     map[string]any{"service": "from-context"},
	})

	logger.Info("hi")
	if got := decodeOne(t, &buf)["service"]; got != "explicit" {
		t.Errorf("Expected service 'explicit', got %v", got)
	}
}

func TestLogger_ErrorWithErr(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LoggerConfig{})

	logger.ErrorWithErr("save failed", errors.New("disk full"))

	entry := decodeOne(t, &buf)
	if entry["level"] != "error" {
		t.Errorf("Expected level 'error', got %v", entry["level"])
	}
	data := entry["data"].(map[string]any)
	if data["error"] != "disk full" {
		t.Errorf("Expected error 'disk full', got %v", data["error"])
	}
	if data["name"] != "*errors.errorString" {
		t.Errorf("Expected error type name, got %v", data["name"])
	}
	if _, ok := data["stack"]; ok {
		t.Error("Expected no stack for an error without one")
	}
}

func TestLogger_MaskFailureDegrades(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LoggerConfig{})

	cyclic := map[string]any{}
	cyclic["self"] = cyclic
	logger.Log(LevelWarn, "bad payload", map[string]any{"loop": cyclic})

	entry := decodeOne(t, &buf)
	if entry["data"] != constants.MaskPlaceholder {
		t.Errorf("Expected data to collapse to placeholder, got %v", entry["data"])
	}
	msg, _ := entry["mask_error"].(string)
	if !strings.Contains(msg, "cyclic") {
		t.Errorf("Expected mask_error to mention the cycle, got %q", msg)
	}
}

func TestLogger_CustomRedactor(t *testing.T) {
	var buf bytes.Buffer
	state := mask.NewState(mask.DefaultPolicy(), mask.MapLookup(map[string]string{
		constants.EnvDefaultMask: "false",
		constants.EnvMaskFields:  "nickname",
	}))
	logger := newJSONLogger(&buf, LoggerConfig{Redactor: state})

	logger.Log(LevelInfo, "profile", map[string]any{"nickname": "bigboss", "password": "plain"})

	data := decodeOne(t, &buf)["data"].(map[string]any)
	if data["nickname"] != "big***oss" {
		t.Errorf("Expected nickname masked, got %v", data["nickname"])
	}
	if data["password"] != "plain" {
		t.Errorf("Expected password untouched with default mask disabled, got %v", data["password"])
	}
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LoggerConfig{})

	ctx := SetRequestID(context.Background(), "req-123")
	logger.WithContext(ctx).Info("handled")

	if got := decodeOne(t, &buf)["request_id"]; got != "req-123" {
		t.Errorf("Expected request_id 'req-123', got %v", got)
	}
}

func TestLogger_Forward(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LoggerConfig{ServiceName: "ingest"})

	logger.Forward(Entry{
		Timestamp: time.Now(),
		Level:     LevelWarn,
		Message:   "button broke",
		Source:    constants.SourceClient,
		Hostname:  "browser-1",
		Service:   "web",
		RequestID: "abc",
		Data:      map[string]any{"token": "abcdefgh"},
	})

	entry := decodeOne(t, &buf)
	if entry["source"] != "client" || entry["hostname"] != "browser-1" || entry["service"] != "web" {
		t.Errorf("Expected client tags, got %v", entry)
	}
	if entry["level"] != "warn" || entry["request_id"] != "abc" {
		t.Errorf("Unexpected level or request id: %v", entry)
	}
	data := entry["data"].(map[string]any)
	if data["token"] != "abc***fgh" {
		t.Errorf("Expected forwarded data to be masked, got %v", data["token"])
	}
}

func TestLogger_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		Level:       LevelInfo,
		Format:      FormatConsole,
		Output:      &buf,
		ServiceName: "api",
		Env:         "staging",
		Version:     "2.0.0",
		Hostname:    "h1",
		Redactor:    mask.NewEngine(mask.DefaultPolicy()),
	})

	logger.Info("Test message")

	output := buf.String()
	if !strings.Contains(output, "[SERVER] [Context:api] [Host:h1] [Env:staging] [v2.0.0] Test message") {
		t.Errorf("Expected prefixed message, got '%s'", output)
	}
	if strings.Contains(output, "\x1b[") {
		t.Errorf("Expected no color codes when colors are disabled, got %q", output)
	}
}

func TestLogger_SimpleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		Level:    LevelInfo,
		Format:   FormatSimple,
		Output:   &buf,
		Source:   constants.SourceClient,
		Hostname: "h1",
		Redactor: mask.NewEngine(mask.DefaultPolicy()),
	})

	logger.WithField("password", "hunter22").Warn("careful")

	output := buf.String()
	if !strings.HasPrefix(output, "[WARN](") {
		t.Errorf("Expected simple format prefix, got '%s'", output)
	}
	if !strings.Contains(output, "): [CLIENT] [Host:h1] careful") {
		t.Errorf("Expected tagged message, got '%s'", output)
	}
	if !strings.Contains(output, `{"password":"hun***r22"}`) {
		t.Errorf("Expected masked data, got '%s'", output)
	}
}

func TestLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "rnl.log")
	logger := NewLogger(LoggerConfig{
		Level:    LevelInfo,
		Format:   FormatJSON,
		FilePath: path,
		Redactor: mask.NewEngine(mask.DefaultPolicy()),
	})

	logger.Info("to file")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), `"message":"to file"`) {
		t.Errorf("Expected message in log file, got '%s'", content)
	}
}

func TestParseLevel(t *testing.T) {
	for _, in := range []string{"DEBUG", "info", " Warn ", "error"} {
		if _, err := ParseLevel(in); err != nil {
			t.Errorf("ParseLevel(%q) returned error: %v", in, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestLevelForEnv(t *testing.T) {
	tests := map[string]Level{
		"production":  LevelWarn,
		"test":        LevelError,
		"development": LevelDebug,
		"":            LevelDebug,
	}
	for env, want := range tests {
		if got := LevelForEnv(env); got != want {
			t.Errorf("LevelForEnv(%q) = %s, want %s", env, got, want)
		}
	}
}

func TestGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	Init(LoggerConfig{Level: LevelInfo, Format: FormatJSON, Output: &buf, Redactor: mask.NewEngine(mask.DefaultPolicy())})
	t.Cleanup(func() { Init(LoggerConfig{Level: LevelInfo, Format: FormatJSON}) })

	Infof("hello %s", "world")

	if got := decodeOne(t, &buf)["message"]; got != "hello world" {
		t.Errorf("Expected 'hello world', got %v", got)
	}
}
