package goSession

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment keys read by ResolveConfig.
const (
	EnvSessionTimeout = "SESSION_TIMEOUT"
	EnvRedisAddr      = "REDIS_ADDR"
	EnvRedisPassword  = "REDIS_PASSWORD"
)

// DefaultSessionTimeoutSeconds applies when SESSION_TIMEOUT is absent or unusable.
const DefaultSessionTimeoutSeconds = 86400

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Session  SessionConfig
	AuditLog AuditLogConfig
	Metrics  MetricsConfig
	Redis    RedisConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the expiry decision and the session key namespace.
//
// Timeout is compared against epoch-millisecond activity timestamps; the
// external SESSION_TIMEOUT value is expressed in seconds.
type SessionConfig struct {
	Timeout     time.Duration
	RedisPrefix string
}

// AuditLogConfig controls the Redis stream audit log.
type AuditLogConfig struct {
	StreamKey string
	MaxLen    int64
}

// MetricsConfig defines a public type used by goSession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// RedisConfig carries connection settings for hosts that build their own client.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			Timeout:     DefaultSessionTimeoutSeconds * time.Second,
			RedisPrefix: "gs",
		},
		AuditLog: AuditLogConfig{
			StreamKey: "gs:audit",
			MaxLen:    0,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return defaultConfig()
}

/*
====================================
RESOLUTION
====================================
*/

// ResolveConfig returns the default configuration with environment overrides
// applied through lookup. It never fails: an absent, empty, non-numeric,
// non-finite or non-positive SESSION_TIMEOUT leaves the default in place.
func ResolveConfig(lookup func(string) (string, bool)) Config {
	cfg := defaultConfig()
	applyEnv(&cfg, lookup)
	return cfg
}

// ResolveConfigFromEnv is ResolveConfig over the process environment.
func ResolveConfigFromEnv() Config {
	return ResolveConfig(os.LookupEnv)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	if raw, ok := lookup(EnvSessionTimeout); ok {
		if d, ok := parseTimeoutSeconds(raw); ok {
			cfg.Session.Timeout = d
		}
	}
	if addr, ok := lookup(EnvRedisAddr); ok && addr != "" {
		cfg.Redis.Addr = addr
	}
	if password, ok := lookup(EnvRedisPassword); ok {
		cfg.Redis.Password = password
	}
}

func parseTimeoutSeconds(raw string) (time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0, false
	}
	if seconds > float64(math.MaxInt64)/float64(time.Second) {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

type fileConfig struct {
	Session struct {
		TimeoutSeconds *float64 `toml:"timeout_seconds"`
		RedisPrefix    *string  `toml:"redis_prefix"`
	} `toml:"session"`
	AuditLog struct {
		StreamKey *string `toml:"stream_key"`
		MaxLen    *int64  `toml:"max_len"`
	} `toml:"audit_log"`
	Metrics struct {
		Enabled           *bool `toml:"enabled"`
		LatencyHistograms *bool `toml:"latency_histograms"`
	} `toml:"metrics"`
	Redis struct {
		Addr     *string `toml:"addr"`
		Password *string `toml:"password"`
		DB       *int    `toml:"db"`
	} `toml:"redis"`
}

// LoadConfigFile decodes a TOML file over the defaults, applies environment
// overrides through lookup, and validates the result.
func LoadConfigFile(path string, lookup func(string) (string, bool)) (Config, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return Config{}, fmt.Errorf("decode config file: %w", err)
	}

	cfg := defaultConfig()
	if v := fc.Session.TimeoutSeconds; v != nil {
		d, ok := parseTimeoutSeconds(strconv.FormatFloat(*v, 'f', -1, 64))
		if !ok {
			return Config{}, errors.New("session.timeout_seconds must be a positive finite number")
		}
		cfg.Session.Timeout = d
	}
	if v := fc.Session.RedisPrefix; v != nil {
		cfg.Session.RedisPrefix = *v
	}
	if v := fc.AuditLog.StreamKey; v != nil {
		cfg.AuditLog.StreamKey = *v
	}
	if v := fc.AuditLog.MaxLen; v != nil {
		cfg.AuditLog.MaxLen = *v
	}
	if v := fc.Metrics.Enabled; v != nil {
		cfg.Metrics.Enabled = *v
	}
	if v := fc.Metrics.LatencyHistograms; v != nil {
		cfg.Metrics.EnableLatencyHistograms = *v
	}
	if v := fc.Redis.Addr; v != nil {
		cfg.Redis.Addr = *v
	}
	if v := fc.Redis.Password; v != nil {
		cfg.Redis.Password = *v
	}
	if v := fc.Redis.DB; v != nil {
		cfg.Redis.DB = *v
	}

	applyEnv(&cfg, lookup)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration error, if any.
func (c *Config) Validate() error {
	if c.Session.Timeout <= 0 {
		return errors.New("Session Timeout must be > 0")
	}
	if c.Session.RedisPrefix == "" {
		return errors.New("Session RedisPrefix must not be empty")
	}
	if c.AuditLog.StreamKey == "" {
		return errors.New("AuditLog StreamKey must not be empty")
	}
	if c.AuditLog.MaxLen < 0 {
		return errors.New("AuditLog MaxLen must be >= 0")
	}
	if c.Redis.DB < 0 {
		return errors.New("Redis DB must be >= 0")
	}
	return nil
}
