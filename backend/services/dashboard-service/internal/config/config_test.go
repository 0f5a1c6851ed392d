package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libconfig "energyprofile/backend/libs/config"
)

func TestLoadRequiresSource(t *testing.T) {
	t.Setenv(libconfig.ConfigFileEnv, "")
	t.Setenv("DASHBOARD_DATA_SOURCE", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(libconfig.ConfigFileEnv, "")
	t.Setenv("DASHBOARD_DATA_SOURCE", "./data.csv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8085", cfg.HTTPAddress())
	assert.Equal(t, 10*time.Second, cfg.Data.Timeout)
	assert.Equal(t, 30*time.Second, cfg.PingInterval())
	assert.Equal(t, 24*time.Hour, cfg.StatusTTL())
	assert.False(t, cfg.AuthEnabled())

	loc, err := cfg.DataLocation()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadFromYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: "9090"
data:
  source: https://example.com/data.csv
  timeout: 20s
jwt:
  secret: from-file
tariff:
  currency: USD
  slabs:
    - upToKWh: 100
      ratePerKWh: 0.1
    - ratePerKWh: 0.2
`), 0o600))
	t.Setenv(libconfig.ConfigFileEnv, path)
	t.Setenv("DASHBOARD_DATA_SOURCE", "")
	os.Unsetenv("DASHBOARD_DATA_SOURCE")
	t.Setenv("DASHBOARD_HTTP_PORT", ":7000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTPAddress())
	assert.Equal(t, "https://example.com/data.csv", cfg.Data.Source)
	assert.Equal(t, 20*time.Second, cfg.Data.Timeout)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, "USD", cfg.Tariff.Currency)
	require.Len(t, cfg.Tariff.Slabs, 2)
	assert.Equal(t, 0.2, cfg.Tariff.Slabs[1].RatePerKWh)
}

func TestValidateRejectsUnknownLocation(t *testing.T) {
	cfg := defaults()
	cfg.Data.Source = "data.csv"
	cfg.Data.Location = "Mars/Olympus"
	assert.Error(t, cfg.Validate())
}
