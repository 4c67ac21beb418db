// Package config loads spotter's settings from defaults, an optional YAML
// file, a .env file and SPOTTER_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/roasbeef/spotter/internal/i18n"
	"github.com/roasbeef/spotter/internal/reviewapi"
	"github.com/roasbeef/spotter/internal/respcache"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SPOTTER_"

// Config is the full set of settings.
type Config struct {
	// Env picks a known backend deployment: local or server.
	Env string `yaml:"env"`

	// BaseURL overrides the deployment's base URL when set.
	BaseURL string `yaml:"base_url"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
	RatePerSecond  float64       `yaml:"rate_per_second"`
	RateBurst      int           `yaml:"rate_burst"`

	CacheTTL        time.Duration `yaml:"cache_ttl"`
	CacheMaxEntries int           `yaml:"cache_max_entries"`

	// DBPath is the key-value store. Empty keeps state in memory.
	DBPath string `yaml:"db_path"`

	// Lang forces the UI language, bypassing the stored choice.
	Lang string `yaml:"lang"`

	LogDir   string `yaml:"log_dir"`
	LogLevel string `yaml:"log_level"`

	// RecommendationsSource is a file path, http(s) URL or s3://bucket/key
	// of the result list.
	RecommendationsSource string `yaml:"recommendations_source"`

	// S3Region and S3Endpoint configure s3:// recommendation sources. An
	// endpoint selects an S3 compatible store.
	S3Region   string `yaml:"s3_region"`
	S3Endpoint string `yaml:"s3_endpoint"`

	// WebAddr is the listen address of the web view.
	WebAddr string `yaml:"web_addr"`
}

// DefaultDir returns ~/.spotter.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".spotter"
	}

	return filepath.Join(home, ".spotter")
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	dir := DefaultDir()

	return Config{
		Env:                   string(reviewapi.EnvServer),
		RequestTimeout:        30 * time.Second,
		RateBurst:             4,
		CacheTTL:              respcache.DefaultTTL,
		CacheMaxEntries:       respcache.DefaultMaxEntries,
		DBPath:                filepath.Join(dir, "spotter.db"),
		LogDir:                filepath.Join(dir, "logs"),
		LogLevel:              "info",
		RecommendationsSource: filepath.Join(dir, "result.json"),
		S3Region:              "us-east-1",
		WebAddr:               "127.0.0.1:8787",
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load builds a Config. A missing file at path is not an error; envFile is
// optional and, when empty, ".env" in the working directory is tried.
func Load(path, envFile string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Defaults only.

		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)

		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path,
					err)
			}
		}
	}

	if err := loadDotEnv(envFile); err != nil {
		return cfg, err
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// loadDotEnv loads envFile into the process environment without overriding
// variables that are already set.
func loadDotEnv(envFile string) error {
	if envFile == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		envFile = ".env"
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("load env file %s: %w", envFile, err)
	}

	return nil
}

// lookupFunc matches os.LookupEnv.
type lookupFunc func(key string) (string, bool)

// applyEnv overlays SPOTTER_* variables.
func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("ENV", &cfg.Env)
	str("BASE_URL", &cfg.BaseURL)
	str("DB_PATH", &cfg.DBPath)
	str("LANG", &cfg.Lang)
	str("LOG_DIR", &cfg.LogDir)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("RECOMMENDATIONS_SOURCE", &cfg.RecommendationsSource)
	str("S3_REGION", &cfg.S3Region)
	str("S3_ENDPOINT", &cfg.S3Endpoint)
	str("WEB_ADDR", &cfg.WebAddr)

	durations := map[string]*time.Duration{
		"REQUEST_TIMEOUT": &cfg.RequestTimeout,
		"CACHE_TTL":       &cfg.CacheTTL,
	}
	for name, dst := range durations {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
	}

	ints := map[string]*int{
		"RATE_BURST":        &cfg.RateBurst,
		"CACHE_MAX_ENTRIES": &cfg.CacheMaxEntries,
	}
	for name, dst := range ints {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
	}

	if v, ok := lookup(EnvPrefix + "RATE_PER_SECOND"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sRATE_PER_SECOND: %w", EnvPrefix, err)
		}
		cfg.RatePerSecond = f
	}

	return nil
}

// Validate checks the settings for consistency.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		if _, err := reviewapi.Environment(c.Env).BaseURL(); err != nil {
			return err
		}
	}
	if c.Lang != "" && c.Lang != string(i18n.Korean) &&
		c.Lang != string(i18n.English) {

		return fmt.Errorf("unknown language %q (must be 'ko' or 'en')",
			c.Lang)
	}
	if c.CacheTTL < 0 || c.CacheMaxEntries < 0 {
		return errors.New("cache bounds must not be negative")
	}

	return nil
}

// ResolveBaseURL returns the explicit base URL or the environment's.
func (c Config) ResolveBaseURL() (string, error) {
	if c.BaseURL != "" {
		return c.BaseURL, nil
	}

	return reviewapi.Environment(c.Env).BaseURL()
}

// Client returns the backend client settings.
func (c Config) Client() (reviewapi.Config, error) {
	base, err := c.ResolveBaseURL()
	if err != nil {
		return reviewapi.Config{}, err
	}

	return reviewapi.Config{
		BaseURL:       base,
		Timeout:       c.RequestTimeout,
		RatePerSecond: c.RatePerSecond,
		Burst:         c.RateBurst,
	}, nil
}

// Cache returns the response cache bounds.
func (c Config) Cache() respcache.Config {
	return respcache.Config{
		TTL:        c.CacheTTL,
		MaxEntries: c.CacheMaxEntries,
	}
}
