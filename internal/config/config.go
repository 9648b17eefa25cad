// SPDX-License-Identifier: Apache-2.0

// Package config loads scan settings from defaults, an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/gemaraproj/logtally/internal/extract"
	"github.com/gemaraproj/logtally/internal/logging"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = ".logtally.yaml"

// Log levels applied when none is configured. Scans keep stderr quiet so
// stdout carries only the report; the MCP server logs its lifecycle.
const (
	DefaultScanLogLevel  = "warn"
	DefaultServeLogLevel = "info"
)

// Output formats understood by the report writer.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds everything a scan needs.
type Config struct {
	Marker       string `yaml:"marker"`         // LOGTALLY_MARKER, default "sent:"
	Minimum      *int64 `yaml:"minimum"`        // LOGTALLY_MINIMUM, default unset
	Comparison   string `yaml:"comparison"`     // LOGTALLY_COMPARISON, default "gt"
	FirstPerLine bool   `yaml:"first_per_line"` // LOGTALLY_FIRST_PER_LINE, default false
	Encoding     string `yaml:"encoding"`       // LOGTALLY_ENCODING, default "utf-8"
	Output       string `yaml:"output"`         // LOGTALLY_OUTPUT, default "text"
	ShowValues   bool   `yaml:"show_values"`    // LOGTALLY_SHOW_VALUES, default false

	Log LogConfig `yaml:"log"`
}

// LogConfig mirrors logging.Config with YAML tags.
type LogConfig struct {
	Level      string `yaml:"level"`        // LOG_LEVEL, default unset (command decides)
	File       string `yaml:"file"`         // LOG_FILE, default "" (stderr only)
	MaxSizeMB  int    `yaml:"max_size_mb"`  // LOG_MAX_SIZE_MB, default 10
	MaxBackups int    `yaml:"max_backups"`  // LOG_MAX_BACKUPS, default 3
	MaxAgeDays int    `yaml:"max_age_days"` // LOG_MAX_AGE_DAYS, default 28
	Compress   bool   `yaml:"compress"`     // LOG_COMPRESS, default true
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Marker:     "sent:",
		Comparison: "gt",
		Encoding:   extract.DefaultEncoding,
		Output:     OutputText,
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path and the
// environment, in that order. An empty path falls back to DefaultFile,
// which may be absent. Load does not validate; call Validate once all
// overrides have been applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
			return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
		}
	case !explicit && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Marker = getEnvString("LOGTALLY_MARKER", cfg.Marker)
	v, ok, err := lookupEnvInt64("LOGTALLY_MINIMUM")
	if err != nil {
		return err
	}
	if ok {
		cfg.Minimum = &v
	}
	cfg.Comparison = getEnvString("LOGTALLY_COMPARISON", cfg.Comparison)
	cfg.FirstPerLine = getEnvBool("LOGTALLY_FIRST_PER_LINE", cfg.FirstPerLine)
	cfg.Encoding = getEnvString("LOGTALLY_ENCODING", cfg.Encoding)
	cfg.Output = getEnvString("LOGTALLY_OUTPUT", cfg.Output)
	cfg.ShowValues = getEnvBool("LOGTALLY_SHOW_VALUES", cfg.ShowValues)

	cfg.Log.Level = getEnvString("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnvString("LOG_FILE", cfg.Log.File)
	cfg.Log.MaxSizeMB = getEnvInt("LOG_MAX_SIZE_MB", cfg.Log.MaxSizeMB)
	cfg.Log.MaxBackups = getEnvInt("LOG_MAX_BACKUPS", cfg.Log.MaxBackups)
	cfg.Log.MaxAgeDays = getEnvInt("LOG_MAX_AGE_DAYS", cfg.Log.MaxAgeDays)
	cfg.Log.Compress = getEnvBool("LOG_COMPRESS", cfg.Log.Compress)
	return nil
}

// Validate checks the fields that Criteria and the report writer rely on.
func (c *Config) Validate() error {
	if c.Marker == "" {
		return errors.New("marker must not be empty")
	}
	if _, err := extract.ParseComparisonMode(c.Comparison); err != nil {
		return err
	}
	if _, err := extract.LookupEncoding(c.Encoding); err != nil {
		return err
	}
	switch strings.ToLower(c.Output) {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", c.Output)
	}
	return nil
}

// Criteria converts the scan settings into extract.Criteria.
func (c *Config) Criteria() (extract.Criteria, error) {
	mode, err := extract.ParseComparisonMode(c.Comparison)
	if err != nil {
		return extract.Criteria{}, err
	}
	crit := extract.Criteria{
		Marker:       c.Marker,
		Mode:         mode,
		FirstPerLine: c.FirstPerLine,
	}
	if c.Minimum != nil {
		crit.Minimum = extract.Min(*c.Minimum)
	}
	return crit, crit.Validate()
}

// Logging returns the logging setup for this configuration. defaultLevel
// applies when no level was set by file, environment or flag.
func (c *Config) Logging(defaultLevel string) logging.Config {
	level := c.Log.Level
	if level == "" {
		level = defaultLevel
	}
	return logging.Config{
		Level:      level,
		FilePath:   c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
		Compress:   c.Log.Compress,
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

// lookupEnvInt64 reads an optional integer. A set but unparsable value is
// an error, since silently dropping a threshold would change the result.
func lookupEnvInt64(key string) (int64, bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return i, true, nil
}
