// Package config loads the collector's TOML configuration descriptor. Its
// shape — one Config struct, a single ParseFile-style loader, well-known
// search locations with an environment-variable fallback, errors
// accumulated and wrapped with fmt.Errorf — follows the host-security
// agent's internal/config package; the concrete grammar is swapped from
// YAML to TOML (github.com/BurntSushi/toml) because spec §6 mandates a TOML
// [kafka] table, matching the original collector's own config.rs.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cubostratus/collector/internal/cubostratusc"
)

// wellKnownPaths is the resolution order for the config file: first
// existing file wins.
var wellKnownPaths = []string{
	"/etc/cubostratusc.toml",
	"/var/lib/cubostratusc/cubostratusc.toml",
}

// configPathEnvVar is consulted only if neither well-known path exists.
const configPathEnvVar = "CUBOSTRATUSC_CONFIG"

// ErrUnknownConfigPath means no configuration file was found at any
// well-known location or via CUBOSTRATUSC_CONFIG.
var ErrUnknownConfigPath = cubostratusc.New(cubostratusc.UnknownConfigPath, "no configuration file found at well-known paths or "+configPathEnvVar)

// KafkaConfig is the [kafka] table: the sink's broker list, acknowledgment
// timeout, and destination topic.
type KafkaConfig struct {
	Hosts      []string `toml:"hosts"`
	AckTimeout int64    `toml:"ack_timeout"` // seconds
	Topic      string   `toml:"topic"`
}

// AckTimeoutDuration converts AckTimeout seconds to a time.Duration.
func (k KafkaConfig) AckTimeoutDuration() time.Duration {
	return time.Duration(k.AckTimeout) * time.Second
}

// OutboxConfig is the optional [outbox] table controlling the durable
// retry-then-drop wrapper sink. Zero-value fields fall back to outbox's own
// defaults.
type OutboxConfig struct {
	Path          string `toml:"path"`
	MaxAttempts   int    `toml:"max_attempts"`
	MaxQueueDepth int    `toml:"max_queue_depth"`
}

// PostgresConfig is the optional [postgres] table enabling the audit-mirror
// sink. An empty ConnString disables the mirror.
type PostgresConfig struct {
	ConnString string `toml:"conn_string"`
	BatchSize  int    `toml:"batch_size"`
}

// AdminAPIConfig is the optional [adminapi] table for the collector's own
// HTTP surface. An empty ListenAddr disables the admin server; an empty
// JWTPublicKeyPath disables Bearer-token validation on its protected routes.
type AdminAPIConfig struct {
	ListenAddr       string `toml:"listen_addr"`
	JWTPublicKeyPath string `toml:"jwt_public_key_path"`
}

// Config is the top-level configuration structure.
type Config struct {
	Kafka    KafkaConfig    `toml:"kafka"`
	Outbox   OutboxConfig   `toml:"outbox"`
	Postgres PostgresConfig `toml:"postgres"`
	AdminAPI AdminAPIConfig `toml:"adminapi"`
	LogLevel string         `toml:"log_level"`
}

// Load resolves the configuration file path and parses it. Resolution order
// matches spec §6: /etc/cubostratusc.toml, then
// /var/lib/cubostratusc/cubostratusc.toml, then the path named by
// CUBOSTRATUSC_CONFIG. The first existing file wins; if none exists, Load
// returns ErrUnknownConfigPath.
func Load() (*Config, error) {
	path, err := resolvePath()
	if err != nil {
		return nil, err
	}
	return ParseFile(path)
}

func resolvePath() (string, error) {
	for _, p := range wellKnownPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	if p := os.Getenv(configPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrUnknownConfigPath
}

// ParseFile reads and parses the TOML file at path, applies defaults, and
// validates all required fields.
func ParseFile(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, cubostratusc.Wrap(cubostratusc.ConfigParseError, fmt.Sprintf("parse %q", path), err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, cubostratusc.Wrap(cubostratusc.ConfigParseError, fmt.Sprintf("validate %q", path), err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Outbox.Path == "" {
		cfg.Outbox.Path = "/var/lib/cubostratusc/outbox.db"
	}
	if cfg.Postgres.ConnString != "" && cfg.Postgres.BatchSize == 0 {
		cfg.Postgres.BatchSize = 100
	}
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// validate checks that all required fields are populated and that
// enumerated fields contain only valid values.
func validate(cfg *Config) error {
	var errs []error

	if len(cfg.Kafka.Hosts) == 0 {
		errs = append(errs, errors.New("kafka.hosts is required and must be non-empty"))
	}
	if cfg.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required"))
	}
	if cfg.Kafka.AckTimeout <= 0 {
		errs = append(errs, errors.New("kafka.ack_timeout must be a positive number of seconds"))
	}
	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level %q must be one of: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Postgres.ConnString != "" && cfg.Postgres.BatchSize <= 0 {
		errs = append(errs, errors.New("postgres.batch_size must be positive when postgres is enabled"))
	}

	return errors.Join(errs...)
}
