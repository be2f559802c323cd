// Package config loads LoreDB settings. Environment variables (LOREDB_*)
// take precedence over loredb.yaml, which takes precedence over defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/roach88/loredb/internal/store"
)

// Defaults.
const (
	DefaultDatabase      = "loredb.db"
	DefaultBusyTimeoutMS = 5000

	fileName  = "loredb"
	envPrefix = "LOREDB"
)

// Config holds the storage settings shared by all commands.
type Config struct {
	Database      string `mapstructure:"database"`
	MaxConns      int    `mapstructure:"max_conns"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms"`

	// File is the config file that was read; empty when none was found.
	File string `mapstructure:"-"`
}

// Load reads configuration.
//
// If path is non-empty that file must exist. Otherwise ./loredb.yaml is
// used when present, and defaults apply when it is not. Environment
// variables (LOREDB_DATABASE, LOREDB_MAX_CONNS, LOREDB_BUSY_TIMEOUT_MS)
// override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("database", DefaultDatabase)
	v.SetDefault("max_conns", store.DefaultMaxConns)
	v.SetDefault("busy_timeout_ms", DefaultBusyTimeoutMS)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Database == "" {
		return errors.New("config: database must not be empty")
	}
	if c.MaxConns < 1 || c.MaxConns > store.DefaultMaxConns {
		return fmt.Errorf("config: max_conns must be between 1 and %d, got %d", store.DefaultMaxConns, c.MaxConns)
	}
	// store.Options reads a zero timeout as "use the default"
	if c.BusyTimeoutMS < 1 {
		return fmt.Errorf("config: busy_timeout_ms must be at least 1, got %d", c.BusyTimeoutMS)
	}
	return nil
}

// StoreOptions converts the config into store.Options.
func (c *Config) StoreOptions(logger *slog.Logger) store.Options {
	return store.Options{
		MaxConns:    c.MaxConns,
		BusyTimeout: time.Duration(c.BusyTimeoutMS) * time.Millisecond,
		Logger:      logger,
	}
}
