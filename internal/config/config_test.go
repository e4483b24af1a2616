package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("青色商店")
	cfg.Business.Proprietor = "山田太郎"
	cfg.Fiscal.SelectedYear = 2024

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Business, got.Business)
	assert.Equal(t, cfg.User.ID, got.User.ID)
	assert.Equal(t, cfg.Database, got.Database)
	assert.Equal(t, 2024, got.Fiscal.SelectedYear)
	assert.Equal(t, cfg.Log, got.Log)
}

func TestDefaults(t *testing.T) {
	cfg := Default("My Shop")

	assert.Equal(t, "My Shop", cfg.Business.Name)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "aoiro.db", cfg.Database.DSN)
	assert.Zero(t, cfg.Fiscal.SelectedYear)
	assert.Equal(t, "info", cfg.Log.Level)
	_, err := uuid.Parse(cfg.User.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, cfg.User.ID, Default("My Shop").User.ID)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("Test Biz")
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Test Biz")
	assert.Contains(t, contents, "driver: sqlite3")
	assert.Contains(t, contents, "dsn: aoiro.db")
	assert.Contains(t, contents, "selected_year: 0")
	assert.NotContains(t, contents, "proprietor")
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, Save(path, Default("Biz")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AOIRO_LOG_LEVEL=debug\nAOIRO_YEAR=2023\n"), 0o644))

	t.Setenv(EnvUser, "from-env")
	t.Setenv(EnvYear, "2025")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvDBDriver, "")
	t.Setenv(EnvDBDSN, "")
	t.Setenv(EnvLogFormat, "json")
	os.Unsetenv(EnvLogLevel)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.User.ID)
	assert.Equal(t, 2025, cfg.Fiscal.SelectedYear, "process environment wins over .env")
	assert.Equal(t, "debug", cfg.Log.Level, ".env fills unset variables")
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_BadYear(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default("Biz")))
	t.Setenv(EnvYear, "twenty")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"driver", func(c *Config) { c.Database.Driver = "postgres" }},
		{"dsn", func(c *Config) { c.Database.DSN = " " }},
		{"year", func(c *Config) { c.Fiscal.SelectedYear = -1 }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("Biz")
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDSN(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, Save(path, Default("Biz")))
	t.Setenv(EnvDBDSN, "")
	t.Setenv(EnvDBDriver, "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "aoiro.db"), cfg.DSN())

	cfg.Database.DSN = ":memory:"
	assert.Equal(t, ":memory:", cfg.DSN())

	cfg.Database.Driver = "mysql"
	cfg.Database.DSN = "user:pw@tcp(localhost:3306)/aoiro"
	assert.Equal(t, "user:pw@tcp(localhost:3306)/aoiro", cfg.DSN())

	assert.Equal(t, "aoiro.db", Default("Biz").DSN(), "unloaded configs keep the DSN as written")
}

func TestSelectedYear(t *testing.T) {
	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	cfg := Default("Biz")
	assert.Equal(t, 2026, cfg.SelectedYear(now))
	cfg.Fiscal.SelectedYear = 2024
	assert.Equal(t, 2024, cfg.SelectedYear(now))
}
