// Package config loads rnl configuration from an optional YAML file and the
// environment, with centralized defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/logging"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/mask"
)

const (
	VersionMajor = 1
	VersionMinor = 4
)

// Version returns the version string in format {major}.{minor}
func Version() string {
	return fmt.Sprintf("%d.%d", VersionMajor, VersionMinor)
}

// Defaults contains all default configuration values
var Defaults = struct {
	Server struct {
		Port   int
		Host   string
		Prefix string
	}
	Logging struct {
		Format      string
		ServiceName string
	}
	Mask struct {
		MatchMode string
		MaxDepth  int
	}
	Store struct {
		Connection   string
		MaxOpenConns int
		QueryTimeout int
	}
	Ingest struct {
		TokenExpiry     int
		MaxBatch        int
		MaxPayloadBytes int
	}
	Client struct {
		BatchSize     int
		FlushInterval time.Duration
	}
	ConfigPath string
}{
	Server: struct {
		Port   int
		Host   string
		Prefix string
	}{
		Port:   6070,
		Host:   "0.0.0.0",
		Prefix: "",
	},
	Logging: struct {
		Format      string
		ServiceName string
	}{
		Format:      logging.FormatSimple,
		ServiceName: "rnl",
	},
	Mask: struct {
		MatchMode string
		MaxDepth  int
	}{
		MatchMode: string(mask.MatchContains),
		MaxDepth:  constants.DefaultMaxDepth,
	},
	Store: struct {
		Connection   string
		MaxOpenConns int
		QueryTimeout int
	}{
		Connection:   "sqlite:///var/lib/rnl/entries.db",
		MaxOpenConns: 10,
		QueryTimeout: 30, // seconds
	},
	Ingest: struct {
		TokenExpiry     int
		MaxBatch        int
		MaxPayloadBytes int
	}{
		TokenExpiry:     30 * 24 * 3600, // 30 days
		MaxBatch:        constants.DefaultIngestMaxBatch,
		MaxPayloadBytes: constants.DefaultIngestMaxPayloadBytes,
	},
	Client: struct {
		BatchSize     int
		FlushInterval time.Duration
	}{
		BatchSize:     constants.DefaultClientBatchSize,
		FlushInterval: constants.ClientFlushInterval,
	},
	ConfigPath: "/etc/rnl.conf",
}

// AppConfig holds the complete rnl configuration.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Mask    MaskConfig    `mapstructure:"mask"`
	Store   StoreConfig   `mapstructure:"store"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
	Client  ClientConfig  `mapstructure:"client"`
}

type ServerConfig struct {
	Port   int    `mapstructure:"port"`
	Host   string `mapstructure:"host"`
	Prefix string `mapstructure:"prefix"` // route prefix, e.g. /api
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`  // debug, info, warn, error; derived from env when empty
	Env         string `mapstructure:"env"`    // deployment environment
	Format      string `mapstructure:"format"` // json, console, simple
	JSON        string `mapstructure:"json"`   // "1" or "true" forces json format
	Path        string `mapstructure:"path"`   // log file; stdout when empty
	DualOutput  bool   `mapstructure:"dual_output"`
	Colors      bool   `mapstructure:"colors"`
	ServiceName string `mapstructure:"service_name"`
	Version     string `mapstructure:"version"`
}

type MaskConfig struct {
	DefaultMask string   `mapstructure:"default_mask"` // anything but "false" enables the default list
	Fields      []string `mapstructure:"fields"`       // extra sensitive field names
	MatchMode   string   `mapstructure:"match_mode"`   // contains, exact, affix
	MaxDepth    int      `mapstructure:"max_depth"`
}

type StoreConfig struct {
	Connection   string `mapstructure:"connection"` // sqlite://path, postgres://..., mysql://...
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	QueryTimeout int    `mapstructure:"query_timeout"` // seconds
}

type IngestConfig struct {
	Secret          string `mapstructure:"secret"`
	TokenExpiry     int    `mapstructure:"token_expiry"` // seconds
	MaxBatch        int    `mapstructure:"max_batch"`
	MaxPayloadBytes int    `mapstructure:"max_payload_bytes"`
}

type ClientConfig struct {
	Endpoint      string        `mapstructure:"endpoint"` // ingest URL
	Token         string        `mapstructure:"token"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// envBindings maps config keys to environment variables, first name wins.
var envBindings = map[string][]string{
	"logging.level":     {constants.EnvLogLevel, constants.EnvLogLevelFallback},
	"logging.env":       {constants.EnvAppEnv, constants.EnvNodeEnv},
	"logging.json":      {constants.EnvLogJSON, constants.EnvLogJSONFallback},
	"mask.default_mask": {constants.EnvDefaultMask, constants.EnvDefaultMaskPublic},
	"mask.fields":       {constants.EnvMaskFields, constants.EnvMaskFieldsPublic},
	"store.connection":  {constants.EnvStoreConnection},
	"ingest.secret":     {constants.EnvIngestSecret},
	"client.endpoint":   {constants.EnvIngestEndpoint},
	"client.token":      {constants.EnvIngestToken},
}

// Load reads configPath (or Defaults.ConfigPath when empty), overlays the
// environment and validates the result.
// A missing default file is not an error; a missing explicit file is.
func Load(configPath string) (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("server.port", Defaults.Server.Port)
	v.SetDefault("server.host", Defaults.Server.Host)
	v.SetDefault("server.prefix", Defaults.Server.Prefix)
	v.SetDefault("logging.format", Defaults.Logging.Format)
	v.SetDefault("logging.service_name", Defaults.Logging.ServiceName)
	v.SetDefault("logging.version", Version())
	v.SetDefault("mask.match_mode", Defaults.Mask.MatchMode)
	v.SetDefault("mask.max_depth", Defaults.Mask.MaxDepth)
	v.SetDefault("store.connection", Defaults.Store.Connection)
	v.SetDefault("store.max_open_conns", Defaults.Store.MaxOpenConns)
	v.SetDefault("store.query_timeout", Defaults.Store.QueryTimeout)
	v.SetDefault("ingest.token_expiry", Defaults.Ingest.TokenExpiry)
	v.SetDefault("ingest.max_batch", Defaults.Ingest.MaxBatch)
	v.SetDefault("ingest.max_payload_bytes", Defaults.Ingest.MaxPayloadBytes)
	v.SetDefault("client.batch_size", Defaults.Client.BatchSize)
	v.SetDefault("client.flush_interval", Defaults.Client.FlushInterval)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(Defaults.ConfigPath)
	}

	if err := v.ReadInConfig(); err != nil {
		if configPath != "" {
			if isNotFound(err) {
				return nil, fmt.Errorf("config file not found: %s", configPath)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if !isNotFound(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// YAML booleans decode weakly to "1"/"0"; read the switch as text.
	cfg.Mask.DefaultMask = v.GetString("mask.default_mask")
	cfg.Logging.JSON = v.GetString("logging.json")

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// isNotFound covers both viper's search error and a missing explicit file.
func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}

func validate(cfg *AppConfig) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Server.Prefix != "" && !strings.HasPrefix(cfg.Server.Prefix, "/") {
		cfg.Server.Prefix = "/" + cfg.Server.Prefix
	}
	cfg.Server.Prefix = strings.TrimSuffix(cfg.Server.Prefix, "/")

	if err := validateLogging(&cfg.Logging); err != nil {
		return err
	}
	if err := validateMask(&cfg.Mask); err != nil {
		return err
	}

	if cfg.Store.Connection == "" {
		cfg.Store.Connection = Defaults.Store.Connection
	}
	if cfg.Store.MaxOpenConns <= 0 {
		cfg.Store.MaxOpenConns = Defaults.Store.MaxOpenConns
	}
	if cfg.Store.QueryTimeout <= 0 {
		cfg.Store.QueryTimeout = Defaults.Store.QueryTimeout
	}

	if cfg.Ingest.TokenExpiry <= 0 {
		cfg.Ingest.TokenExpiry = Defaults.Ingest.TokenExpiry
	}
	if cfg.Ingest.MaxBatch <= 0 {
		cfg.Ingest.MaxBatch = Defaults.Ingest.MaxBatch
	}
	if cfg.Ingest.MaxPayloadBytes <= 0 {
		cfg.Ingest.MaxPayloadBytes = Defaults.Ingest.MaxPayloadBytes
	}

	if cfg.Client.BatchSize <= 0 {
		cfg.Client.BatchSize = Defaults.Client.BatchSize
	}
	if cfg.Client.FlushInterval <= 0 {
		cfg.Client.FlushInterval = Defaults.Client.FlushInterval
	}

	return nil
}

func validateLogging(l *LoggingConfig) error {
	if l.Level == "" {
		l.Level = string(logging.LevelForEnv(l.Env))
	} else {
		level, err := logging.ParseLevel(l.Level)
		if err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
		l.Level = string(level)
	}

	if json := strings.TrimSpace(l.JSON); json == "1" || strings.EqualFold(json, "true") {
		l.Format = logging.FormatJSON
	}
	switch l.Format {
	case "":
		l.Format = Defaults.Logging.Format
	case logging.FormatJSON, logging.FormatConsole, logging.FormatSimple:
	default:
		return fmt.Errorf("logging.format: invalid format '%s', must be one of: json, console, simple", l.Format)
	}

	if l.DualOutput && l.Path == "" {
		return fmt.Errorf("logging.dual_output requires logging.path")
	}
	return nil
}

func validateMask(m *MaskConfig) error {
	m.MatchMode = strings.ToLower(strings.TrimSpace(m.MatchMode))
	if !mask.MatchMode(m.MatchMode).Valid() {
		return fmt.Errorf("mask.match_mode: invalid mode '%s', must be one of: contains, exact, affix", m.MatchMode)
	}
	if m.MatchMode == "" {
		m.MatchMode = Defaults.Mask.MatchMode
	}
	if m.MaxDepth <= 0 {
		m.MaxDepth = Defaults.Mask.MaxDepth
	}
	return nil
}

// RequireSecret reports an error when the ingest secret is missing or too
// short to sign tokens.
func (c IngestConfig) RequireSecret() error {
	if c.Secret == "" {
		return fmt.Errorf("ingest secret is required (set ingest.secret or %s)", constants.EnvIngestSecret)
	}
	if len(c.Secret) < 32 {
		return fmt.Errorf("ingest secret must be at least 32 bytes, got %d", len(c.Secret))
	}
	return nil
}

// QueryTimeoutDuration returns the store query timeout.
func (c StoreConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(c.QueryTimeout) * time.Second
}

// TokenExpiryDuration returns the ingest token lifetime.
func (c IngestConfig) TokenExpiryDuration() time.Duration {
	return time.Duration(c.TokenExpiry) * time.Second
}

// BasePolicy is the redaction policy before the default-mask switch and
// field list are applied.
func (m MaskConfig) BasePolicy() mask.Policy {
	return mask.Policy{
		EnableDefaultMask: true,
		MatchMode:         mask.MatchMode(m.MatchMode),
		MaxDepth:          m.MaxDepth,
	}
}

// Lookup serves the mask switch and field list to mask.State. Unset values
// report absent so the state keeps its defaults.
func (m MaskConfig) Lookup(key string) (string, bool) {
	switch key {
	case constants.EnvDefaultMask:
		return m.DefaultMask, m.DefaultMask != ""
	case constants.EnvMaskFields:
		return strings.Join(m.Fields, ","), len(m.Fields) > 0
	}
	return "", false
}

// NewMaskState builds a redaction state from the configuration.
func (m MaskConfig) NewMaskState() *mask.State {
	return mask.NewState(m.BasePolicy(), m.Lookup)
}

// LoggerConfig converts the logging section into a logging.LoggerConfig.
func (l LoggingConfig) LoggerConfig(redactor logging.Redactor) logging.LoggerConfig {
	return logging.LoggerConfig{
		Level:       logging.Level(l.Level),
		Format:      l.Format,
		FilePath:    l.Path,
		DualOutput:  l.DualOutput,
		Source:      constants.SourceServer,
		ServiceName: l.ServiceName,
		Env:         l.Env,
		Version:     l.Version,
		Colors:      l.Colors,
		Redactor:    redactor,
	}
}
