package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aoiro-dev/aoiro/internal/storage"
)

// FileName is the config file created by init.
const FileName = "aoiro.yaml"

// Environment variables that override the config file.
const (
	EnvDBDriver  = "AOIRO_DB_DRIVER"
	EnvDBDSN     = "AOIRO_DB_DSN"
	EnvUser      = "AOIRO_USER"
	EnvYear      = "AOIRO_YEAR"
	EnvLogLevel  = "AOIRO_LOG_LEVEL"
	EnvLogFormat = "AOIRO_LOG_FORMAT"
)

// Config represents the top-level aoiro.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	User     UserConfig     `yaml:"user"`
	Database DatabaseConfig `yaml:"database"`
	Fiscal   FiscalConfig   `yaml:"fiscal"`
	Log      LogConfig      `yaml:"log"`

	dir string
}

// BusinessConfig identifies the business.
type BusinessConfig struct {
	Name       string `yaml:"name"`
	Proprietor string `yaml:"proprietor,omitempty"`
}

// UserConfig holds the id every record is scoped to.
type UserConfig struct {
	ID string `yaml:"id"`
}

// DatabaseConfig selects the storage driver.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// FiscalConfig holds the selected fiscal year. Zero means the current
// calendar year.
type FiscalConfig struct {
	SelectedYear int `yaml:"selected_year"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads an aoiro.yaml file from disk, then applies a .env file in the
// same directory and AOIRO_* environment variables on top.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.dir = filepath.Dir(path)

	envPath := filepath.Join(cfg.dir, ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envPath, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDBDriver); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(EnvDBDSN); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		c.User.ID = v
	}
	if v := os.Getenv(EnvYear); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvYear, v, err)
		}
		c.Fiscal.SelectedYear = year
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Log.Format = v
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new set of books.
// The user id is freshly generated.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{Name: businessName},
		User:     UserConfig{ID: uuid.NewString()},
		Database: DatabaseConfig{
			Driver: storage.DriverSQLite,
			DSN:    "aoiro.db",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Validate checks the settings that have a fixed set of values.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case storage.DriverSQLite, storage.DriverMySQL:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database dsn is required")
	}
	if c.Fiscal.SelectedYear < 0 {
		return fmt.Errorf("invalid fiscal year %d", c.Fiscal.SelectedYear)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}
	return nil
}

// DSN returns the database DSN. A relative SQLite path is resolved against
// the directory the config was loaded from.
func (c *Config) DSN() string {
	dsn := c.Database.DSN
	if c.Database.Driver != storage.DriverSQLite || c.dir == "" {
		return dsn
	}
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") || filepath.IsAbs(dsn) {
		return dsn
	}
	return filepath.Join(c.dir, dsn)
}

// SelectedYear returns the configured fiscal year, or now's calendar year
// when none is set.
func (c *Config) SelectedYear(now time.Time) int {
	if c.Fiscal.SelectedYear > 0 {
		return c.Fiscal.SelectedYear
	}
	return now.Year()
}
