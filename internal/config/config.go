// Package config loads atelier settings. Values come from, in increasing
// precedence: built-in defaults, .atelier/config.json, .env files and the
// process environment (ATELIER_* variables).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/example/atelier/internal/core/calendar"
)

const (
	// CurrentVersion is written by SaveConfig.
	CurrentVersion = "1"
	dirName        = ".atelier"
	fileName       = "config.json"
)

// Config represents the atelier configuration.
type Config struct {
	Version  string         `json:"version"`
	Actor    string         `json:"actor,omitempty" env:"ATELIER_ACTOR"` // recorded in the audit trail
	Database DatabaseConfig `json:"database"`
	Log      LogConfig      `json:"log"`
	Redis    RedisConfig    `json:"redis"`
	Audit    AuditConfig    `json:"audit"`
	Absence  AbsenceConfig  `json:"absence"`
	Calendar CalendarConfig `json:"calendar"`
	Metrics  MetricsConfig  `json:"metrics"`
}

type DatabaseConfig struct {
	Driver string `json:"driver" env:"ATELIER_DB_DRIVER"` // sqlite3 or postgres
	DSN    string `json:"dsn" env:"ATELIER_DB_DSN"`
}

type LogConfig struct {
	Level  string `json:"level" env:"ATELIER_LOG_LEVEL"`   // debug, info, warn, error
	Format string `json:"format" env:"ATELIER_LOG_FORMAT"` // console or json
}

type RedisConfig struct {
	Addr     string `json:"addr,omitempty" env:"ATELIER_REDIS_ADDR"` // empty disables Redis
	Password string `json:"password,omitempty" env:"ATELIER_REDIS_PASSWORD"`
	DB       int    `json:"db" env:"ATELIER_REDIS_DB"`
}

type AuditConfig struct {
	Stream string `json:"stream,omitempty" env:"ATELIER_AUDIT_STREAM"` // Redis stream mirror, empty for none
	Async  bool   `json:"async" env:"ATELIER_AUDIT_ASYNC"`
	Buffer int    `json:"buffer" env:"ATELIER_AUDIT_BUFFER"`
}

type AbsenceConfig struct {
	Stream      string `json:"stream" env:"ATELIER_ABSENCE_STREAM"`
	Group       string `json:"group" env:"ATELIER_ABSENCE_GROUP"`
	Consumer    string `json:"consumer,omitempty" env:"ATELIER_ABSENCE_CONSUMER"`
	BlockMillis int    `json:"block_ms" env:"ATELIER_ABSENCE_BLOCK_MS"`
}

type CalendarConfig struct {
	DefaultDayEnd string `json:"default_day_end" env:"ATELIER_DEFAULT_DAY_END"` // HH:MM
}

type MetricsConfig struct {
	Addr string `json:"addr,omitempty" env:"ATELIER_METRICS_ADDR"` // e.g. :9464, empty disables
}

// Default returns the built-in configuration.
func Default() *Config {
	dsn := filepath.Join(dirName, "atelier.db")
	if home, err := os.UserHomeDir(); err == nil {
		dsn = filepath.Join(home, dirName, "atelier.db")
	}
	return &Config{
		Version:  CurrentVersion,
		Database: DatabaseConfig{Driver: "sqlite3", DSN: dsn},
		Log:      LogConfig{Level: "info", Format: "console"},
		Audit:    AuditConfig{Buffer: 256},
		Absence: AbsenceConfig{
			Stream:      "atelier:absences",
			Group:       "atelier",
			BlockMillis: 5000,
		},
		Calendar: CalendarConfig{DefaultDayEnd: "17:00"},
	}
}

// Load resolves the configuration for dir. The config file is looked up in
// dir first, then in the home directory; a missing file is not an error.
func Load(dir string) (*Config, error) {
	cfg := Default()

	if err := cfg.mergeFile(dir); err != nil {
		return nil, err
	}
	if _, err := LoadEnv([]string{
		filepath.Join(dir, ".env"),
		filepath.Join(dir, ".env.local"),
	}); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(dir string) error {
	candidates := []string{filepath.Join(dir, dirName, fileName)}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, dirName, fileName))
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		return nil
	}
	return nil
}

// LoadEnv loads the env files that exist, returning how many were read.
// Variables already set in the environment win over file values.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Validate checks the configuration for values the services cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be sqlite3 or postgres, got %q", c.Database.Driver))
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}

	if _, err := c.DefaultDayEnd(); err != nil {
		errs = append(errs, fmt.Errorf("calendar.default_day_end: %w", err))
	}

	if c.Audit.Async && c.Audit.Buffer <= 0 {
		errs = append(errs, errors.New("audit.buffer must be positive when audit.async is set"))
	}
	if c.Audit.Stream != "" && c.Redis.Addr == "" {
		errs = append(errs, errors.New("audit.stream requires redis.addr"))
	}

	return errors.Join(errs...)
}

// DefaultDayEnd parses the configured end of day.
func (c *Config) DefaultDayEnd() (calendar.Clock, error) {
	return calendar.ParseClock(c.Calendar.DefaultDayEnd)
}

// ConsumerName returns the configured consumer name or the host name.
func (c *Config) ConsumerName() string {
	if c.Absence.Consumer != "" {
		return c.Absence.Consumer
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "atelier"
	}
	return host
}

// SaveConfig writes config.json to dir/.atelier.
func SaveConfig(dir string, cfg *Config) error {
	configDir := filepath.Join(dir, dirName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", dirName, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(configDir, fileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the config file location for dir.
func Path(dir string) string {
	return filepath.Join(dir, dirName, fileName)
}
