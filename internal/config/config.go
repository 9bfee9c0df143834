// Package config loads circleledger settings: built-in defaults, then an optional
// TOML file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mmynk/circleledger/internal/models"
	"github.com/mmynk/circleledger/internal/money"
	"github.com/mmynk/circleledger/pkg/logging"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Ledger   LedgerConfig   `toml:"ledger"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// RequestTimeout bounds each HTTP request, e.g. "30s".
	RequestTimeout string `toml:"request_timeout"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

type LedgerConfig struct {
	// DustThreshold is the largest net position, in minor units, that SIMPLIFY
	// treats as settled. Zero keeps every unit.
	DustThreshold int64 `toml:"dust_threshold"`
	// DefaultMode is the settlement mode given to groups created without one.
	DefaultMode string `toml:"default_mode"`
}

// DefaultConfig returns the configuration used when no file or env overrides are given.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			RequestTimeout: "30s",
		},
		Database: DatabaseConfig{
			Path: "./data/circleledger.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Ledger: LedgerConfig{
			DustThreshold: 0,
			DefaultMode:   string(models.ModePairwise),
		},
	}
}

// Load builds the configuration. An empty path skips the file; a missing file at an
// explicit path is an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid METRICS_ENABLED %q: %w", v, err)
		}
		c.Metrics.Enabled = enabled
	}
	if v := os.Getenv("DUST_THRESHOLD"); v != "" {
		dust, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid DUST_THRESHOLD %q: %w", v, err)
		}
		c.Ledger.DustThreshold = dust
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Ledger.DustThreshold < 0 || money.Amount(c.Ledger.DustThreshold) > money.MaxAmount {
		return fmt.Errorf("ledger.dust_threshold must be between 0 and %d, got %d", money.MaxAmount, c.Ledger.DustThreshold)
	}
	if _, err := c.DefaultMode(); err != nil {
		return err
	}
	return nil
}

// Addr is the listen address, host:port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// RequestTimeout parses server.request_timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Server.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("server.request_timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("server.request_timeout must be positive, got %s", d)
	}
	return d, nil
}

// LogLevel parses log.level.
func (c *Config) LogLevel() slog.Level {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// DefaultMode parses ledger.default_mode.
func (c *Config) DefaultMode() (models.SettlementMode, error) {
	mode, err := models.ParseSettlementMode(c.Ledger.DefaultMode)
	if err != nil {
		return "", fmt.Errorf("ledger.default_mode: %w", err)
	}
	return mode, nil
}

// DustThreshold returns ledger.dust_threshold as an amount.
func (c *Config) DustThreshold() money.Amount {
	return money.Amount(c.Ledger.DustThreshold)
}
