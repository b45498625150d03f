// Package config loads the console configuration: defaults, then an
// optional YAML file, then BANKCONSOLE_* environment variables. Command
// line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const EnvPrefix = "BANKCONSOLE_"

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type Config struct {
	// Listen is the address the HTTP server binds.
	Listen string `yaml:"listen"`

	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Cache   CacheConfig   `yaml:"cache"`
	CORS    CORSConfig    `yaml:"cors"`
	Log     LogConfig     `yaml:"log"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	// Store is memory or sqlite.
	Store string `yaml:"store"`

	// DSN is the sqlite database file.
	DSN     string        `yaml:"dsn"`
	Timeout time.Duration `yaml:"timeout"`

	// Secret derives the cookie encryption key. Empty means a random key,
	// so cookies do not survive restarts.
	Secret string `yaml:"secret"`
	Secure bool   `yaml:"secure"`
}

type CacheConfig struct {
	StaleAfter    time.Duration `yaml:"stale_after"`
	KeepUnusedFor time.Duration `yaml:"keep_unused_for"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	Debounce      time.Duration `yaml:"debounce"`
}

type CORSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Origin  string `yaml:"origin"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Listen: ":8080",
		API: APIConfig{
			BaseURL: "http://localhost:8081",
			Timeout: 10 * time.Second,
		},
		Session: SessionConfig{
			Store:   StoreMemory,
			DSN:     "data/sessions.db",
			Timeout: 24 * time.Hour,
		},
		Cache: CacheConfig{
			StaleAfter:    30 * time.Second,
			KeepUnusedFor: 60 * time.Second,
			FetchTimeout:  15 * time.Second,
			Debounce:      500 * time.Millisecond,
		},
		CORS: CORSConfig{
			Origin: "*",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path, when not empty, over the defaults and applies the
// environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	texts := map[string]*string{
		"LISTEN":         &c.Listen,
		"API_BASE_URL":   &c.API.BaseURL,
		"SESSION_STORE":  &c.Session.Store,
		"SESSION_DSN":    &c.Session.DSN,
		"SESSION_SECRET": &c.Session.Secret,
		"CORS_ORIGIN":    &c.CORS.Origin,
		"LOG_LEVEL":      &c.Log.Level,
		"LOG_FORMAT":     &c.Log.Format,
	}
	for name, dst := range texts {
		if value, ok := lookup(EnvPrefix + name); ok {
			*dst = value
		}
	}

	durations := map[string]*time.Duration{
		"API_TIMEOUT":           &c.API.Timeout,
		"SESSION_TIMEOUT":       &c.Session.Timeout,
		"CACHE_STALE_AFTER":     &c.Cache.StaleAfter,
		"CACHE_KEEP_UNUSED_FOR": &c.Cache.KeepUnusedFor,
		"CACHE_FETCH_TIMEOUT":   &c.Cache.FetchTimeout,
		"CACHE_DEBOUNCE":        &c.Cache.Debounce,
	}
	var errs []error
	for name, dst := range durations {
		value, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			continue
		}
		*dst = d
	}

	bools := map[string]*bool{
		"SESSION_SECURE": &c.Session.Secure,
		"CORS_ENABLED":   &c.CORS.Enabled,
	}
	for name, dst := range bools {
		value, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			continue
		}
		*dst = b
	}
	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	}
	switch c.Session.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.Session.DSN == "" {
			errs = append(errs, errors.New("session.dsn is required for the sqlite store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session.store '%s'", c.Session.Store))
	}
	positive := map[string]time.Duration{
		"api.timeout":           c.API.Timeout,
		"session.timeout":       c.Session.Timeout,
		"cache.stale_after":     c.Cache.StaleAfter,
		"cache.keep_unused_for": c.Cache.KeepUnusedFor,
		"cache.fetch_timeout":   c.Cache.FetchTimeout,
	}
	for name, d := range positive {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.Cache.Debounce < 0 {
		errs = append(errs, errors.New("cache.debounce cannot be negative"))
	}
	return errors.Join(errs...)
}
