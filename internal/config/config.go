// Package config loads service configuration from config.yaml, CARDSYNC_*
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/light-bringer/cardsync-service/internal/pkg/logger"
)

// Store modes.
const (
	StoreSpanner = "spanner"
	StoreRemote  = "remote"
)

// Config holds all service configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Spanner SpannerConfig `mapstructure:"spanner"`
	Store   StoreConfig   `mapstructure:"store"`
	Commit  CommitConfig  `mapstructure:"commit"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Outbox  OutboxConfig  `mapstructure:"outbox"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SpannerConfig holds the database path.
type SpannerConfig struct {
	Database string `mapstructure:"database"`
}

// StoreConfig selects where card writes and reads go.
type StoreConfig struct {
	Mode      string        `mapstructure:"mode"`       // "spanner" or "remote"
	RemoteURL string        `mapstructure:"remote_url"` // remote mode only
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CommitConfig is the backpressure policy of a commit run.
type CommitConfig struct {
	OpDelay     time.Duration `mapstructure:"op_delay"`
	EntityDelay time.Duration `mapstructure:"entity_delay"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

// RedisConfig enables progress and event fan-out when Addr is set.
type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Channel      string `mapstructure:"channel"`
	EventsPrefix string `mapstructure:"events_prefix"`
}

// OutboxConfig drives the outbox relay.
type OutboxConfig struct {
	RelayInterval time.Duration `mapstructure:"relay_interval"`
	BatchSize     int           `mapstructure:"batch_size"`
}

// LoggingConfig selects the zap preset.
type LoggingConfig struct {
	Mode string `mapstructure:"mode"` // "dev" or "prod"
}

var defaults = map[string]interface{}{
	"server.port":             8080,
	"server.shutdown_timeout": 10 * time.Second,
	"spanner.database":        "projects/test-project/instances/test-instance/databases/cardsync-db",
	"store.mode":              StoreSpanner,
	"store.remote_url":        "",
	"store.timeout":           10 * time.Second,
	"commit.op_delay":         100 * time.Millisecond,
	"commit.entity_delay":     200 * time.Millisecond,
	"commit.call_timeout":     time.Duration(0),
	"redis.addr":              "",
	"redis.channel":           "cardsync.progress",
	"redis.events_prefix":     "cardsync.events.",
	"outbox.relay_interval":   5 * time.Second,
	"outbox.batch_size":       100,
	"logging.mode":            "dev",
}

// Load reads configuration. An explicit path must exist; otherwise
// config.yaml is looked up in . and ./config and may be absent.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("CARDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Store.Mode {
	case StoreSpanner:
		if c.Spanner.Database == "" {
			return fmt.Errorf("spanner.database is required in %s mode", StoreSpanner)
		}
	case StoreRemote:
		if c.Store.RemoteURL == "" {
			return fmt.Errorf("store.remote_url is required in %s mode", StoreRemote)
		}
	default:
		return fmt.Errorf("invalid store.mode %q", c.Store.Mode)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if _, err := logger.ParseMode(c.Logging.Mode); err != nil {
		return fmt.Errorf("invalid logging.mode: %w", err)
	}
	return nil
}
