// Package config loads tool settings from a YAML file and MODELTOOLS_*
// environment variables. Command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/erraggy/modeltools/registry"
	"go.yaml.in/yaml/v4"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MODELTOOLS_"

// Config holds the settings shared by all commands.
type Config struct {
	TargetVersion string        `yaml:"target_version"`
	TargetMode    string        `yaml:"target_mode"`
	Store         string        `yaml:"store"`
	LockTimeout   time.Duration `yaml:"lock_timeout"`
	LogLevel      string        `yaml:"log_level"`
	LogFormat     string        `yaml:"log_format"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		TargetVersion: "14.1.2",
		TargetMode:    "offline",
		Store:         "domain.db",
		LockTimeout:   5 * time.Second,
		LogLevel:      "warn",
		LogFormat:     "text",
	}
}

// Load returns the defaults overlaid by the file at path (if path is not
// empty) and then by the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user on purpose
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from MODELTOOLS_* variables. Invalid durations
// log a warning and keep the current value.
func (c *Config) applyEnv(getenv func(string) string) {
	envString(getenv, "TARGET_VERSION", &c.TargetVersion)
	envString(getenv, "TARGET_MODE", &c.TargetMode)
	envString(getenv, "STORE", &c.Store)
	envString(getenv, "LOG_LEVEL", &c.LogLevel)
	envString(getenv, "LOG_FORMAT", &c.LogFormat)
	envDuration(getenv, "LOCK_TIMEOUT", &c.LockTimeout)
}

func envString(getenv func(string) string, key string, dst *string) {
	if v := strings.TrimSpace(getenv(EnvPrefix + key)); v != "" {
		*dst = v
	}
}

func envDuration(getenv func(string) string, key string, dst *time.Duration) {
	v := getenv(EnvPrefix + key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", EnvPrefix+key, "value", v, "default", *dst) //nolint:gosec // G706: values are structured log fields, not format strings
		return
	}
	*dst = d
}

// Validate checks every field and reports all problems together.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.TargetVersion) == "" {
		errs = append(errs, errors.New("target_version must be set"))
	}
	if _, err := registry.ParseMode(c.TargetMode); err != nil {
		errs = append(errs, fmt.Errorf("target_mode: %w", err))
	}
	if c.LockTimeout <= 0 {
		errs = append(errs, fmt.Errorf("lock_timeout must be positive, got %s", c.LockTimeout))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Mode returns the parsed target mode. It assumes Validate passed.
func (c *Config) Mode() registry.Mode {
	m, _ := registry.ParseMode(c.TargetMode)
	return m
}

// Level returns the parsed log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Logger builds the slog logger described by LogLevel and LogFormat.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
