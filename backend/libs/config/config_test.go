package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	HTTP struct {
		Port string `yaml:"port" env:"SAMPLE_HTTP_PORT"`
	} `yaml:"http"`
	Data struct {
		Source  string        `yaml:"source"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"data"`
	Retries int     `yaml:"retries"`
	Ratio   float64 `yaml:"ratio"`
	Enabled bool    `yaml:"enabled"`
	Slabs   []int   `yaml:"slabs" env:"-"`
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: "9000"
data:
  source: ./data.csv
retries: 2
slabs: [75, 200]
`), 0o600))

	t.Setenv("SAMPLE_HTTP_PORT", "9100")
	t.Setenv("DATA_TIMEOUT", "15")
	t.Setenv("RATIO", "0.5")
	t.Setenv("ENABLED", "true")

	var cfg sampleConfig
	require.NoError(t, LoadConfigFile(path, &cfg))

	assert.Equal(t, "9100", cfg.HTTP.Port)
	assert.Equal(t, "./data.csv", cfg.Data.Source)
	assert.Equal(t, 15*time.Second, cfg.Data.Timeout)
	assert.Equal(t, 2, cfg.Retries)
	assert.Equal(t, 0.5, cfg.Ratio)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, []int{75, 200}, cfg.Slabs)
}

func TestLoadConfigDurationString(t *testing.T) {
	t.Setenv("DATA_TIMEOUT", "1m30s")

	var cfg sampleConfig
	require.NoError(t, LoadConfigFile("", &cfg))
	assert.Equal(t, 90*time.Second, cfg.Data.Timeout)
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	var cfg sampleConfig
	assert.Error(t, LoadConfigFile("", nil))
	assert.Error(t, LoadConfigFile("", cfg))
	assert.Error(t, LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"), &cfg))

	t.Setenv("RETRIES", "many")
	err := LoadConfigFile("", &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RETRIES")
}
