package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "energyprofile/backend/libs/config"
	"energyprofile/backend/services/dashboard-service/internal/models"
)

// Config defines dashboard service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"DASHBOARD_HTTP_PORT"`
	} `yaml:"http"`
	Log struct {
		Level string `yaml:"level" env:"DASHBOARD_LOG_LEVEL"`
	} `yaml:"log"`
	Data struct {
		Source   string        `yaml:"source" env:"DASHBOARD_DATA_SOURCE"`
		Timeout  time.Duration `yaml:"timeout" env:"DASHBOARD_DATA_TIMEOUT"`
		Location string        `yaml:"location" env:"DASHBOARD_DATA_LOCATION"`
	} `yaml:"data"`
	JWT struct {
		Secret    string        `yaml:"secret" env:"DASHBOARD_JWT_SECRET"`
		ExpiresIn time.Duration `yaml:"expiresIn" env:"DASHBOARD_JWT_EXPIRES_IN"`
	} `yaml:"jwt"`
	WS struct {
		PingSeconds int `yaml:"pingSeconds" env:"DASHBOARD_WS_PING_SECONDS"`
	} `yaml:"ws"`
	Redis struct {
		Addr     string `yaml:"addr" env:"DASHBOARD_REDIS_ADDR"`
		Password string `yaml:"password" env:"DASHBOARD_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"DASHBOARD_REDIS_DB"`
		Prefix   string `yaml:"prefix" env:"DASHBOARD_REDIS_PREFIX"`
		TTL      int    `yaml:"ttlSeconds" env:"DASHBOARD_REDIS_TTL"`
	} `yaml:"redis"`
	Archive struct {
		DSN string `yaml:"dsn" env:"DASHBOARD_ARCHIVE_DSN"`
	} `yaml:"archive"`
	Tariff struct {
		Currency string              `yaml:"currency" env:"DASHBOARD_TARIFF_CURRENCY"`
		Slabs    []models.TariffSlab `yaml:"slabs" env:"-"`
	} `yaml:"tariff"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := defaults()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.HTTP.Port = "8085"
	cfg.Data.Timeout = 10 * time.Second
	cfg.Data.Location = "UTC"
	cfg.WS.PingSeconds = 30
	cfg.Redis.TTL = 86400
	return cfg
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Data.Source) == "" {
		return errors.New("config: data source required")
	}
	if _, err := c.DataLocation(); err != nil {
		return fmt.Errorf("config: data location: %w", err)
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8085"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// DataLocation resolves the zone used for timestamps without offset.
func (c *Config) DataLocation() (*time.Location, error) {
	name := strings.TrimSpace(c.Data.Location)
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// PingInterval returns the websocket keepalive interval.
func (c *Config) PingInterval() time.Duration {
	if c.WS.PingSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.WS.PingSeconds) * time.Second
}

// StatusTTL returns the lifetime of the redis status key.
func (c *Config) StatusTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// AuthEnabled reports whether the API requires bearer tokens.
func (c *Config) AuthEnabled() bool {
	return strings.TrimSpace(c.JWT.Secret) != ""
}
