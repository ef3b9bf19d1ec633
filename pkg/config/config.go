// Package config provides configuration management for the texquant CLI.
//
// Configuration is loaded exclusively from a JSON file at
// ~/.config/texquant/config.json. No environment variables or
// auto-discovery mechanisms are used - a missing file simply means every
// field takes its default.
//
// Example config file:
//
//	{
//	  "log_level": "info",
//	  "log_file": "",
//	  "default_format": "RGBA16",
//	  "default_size": "U8",
//	  "enable_timing": false
//	}
//
// Unlike the server this package was adapted from, texquant has no
// required external executable to locate: every field here is ambient
// behavior (logging, CLI flag defaults), never a substitute for the
// explicit <image-path> <format> <size> positional arguments.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the texquant CLI's configuration.
//
// All fields are optional in the config file:
//   - DefaultFormat defaults to "RGBA16" if not specified
//   - DefaultSize defaults to "U8" if not specified
//   - LogLevel defaults to "info" if not specified
//   - LogFile defaults to empty if not specified
//   - EnableTiming defaults to false if not specified
type Config struct {
	// LogLevel is the logging verbosity level.
	// Valid values: "debug", "info", "warn", "error"
	// Defaults to "info" if not specified.
	LogLevel string `json:"log_level"`

	// LogFile is an optional path to a log file. It is loaded into the
	// Config but nothing reads it: the CLI's logger writes only to its
	// console sink, whatever this field holds.
	// Defaults to empty string if not specified.
	LogFile string `json:"log_file"`

	// DefaultFormat is the output format used when the CLI's <format>
	// argument is omitted.
	// Defaults to "RGBA16" if not specified.
	DefaultFormat string `json:"default_format"`

	// DefaultSize is the array element size used when the CLI's <size>
	// argument is omitted.
	// Defaults to "U8" if not specified.
	DefaultSize string `json:"default_size"`

	// EnableTiming is loaded into the Config but nothing reads it: every
	// conversion gets a request ID and has its duration logged whether or
	// not it is set.
	// Defaults to false if not specified.
	EnableTiming bool `json:"enable_timing"`
}

// Default configuration values applied when fields are not specified in the
// config file.
const (
	// DefaultLogLevel is the default logging verbosity ("info")
	DefaultLogLevel = "info"

	// DefaultFormat is the default output format ("RGBA16")
	DefaultFormat = "RGBA16"

	// DefaultSize is the default array element size ("U8")
	DefaultSize = "U8"
)

// Load loads configuration from the default config file at
// ~/.config/texquant/config.json. A missing file is not an error: Load
// returns a Config populated entirely by defaults.
//
// Returns an error if the file exists but is malformed JSON, or if
// validation fails for any field.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := cfg.loadFromFile(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from the default config file location.
func (c *Config) loadFromFile() error {
	configPath := getConfigFilePath()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("malformed config file %s: %w", configPath, err)
	}

	return nil
}

// setDefaults fills in every unset field. Unlike the server this package
// was adapted from, texquant has no required field: a config file that
// sets nothing is valid and yields an entirely default Config.
func (c *Config) setDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.DefaultFormat == "" {
		c.DefaultFormat = DefaultFormat
	}
	if c.DefaultSize == "" {
		c.DefaultSize = DefaultSize
	}
}

// Validate checks if the configuration is usable.
//
// Validation checks:
//   - LogLevel is one of: debug, info, warn, error
//   - DefaultFormat is one of the seven supported texture formats
//   - DefaultSize is one of: U8, U16, U32
//
// This method is automatically called by Load() before returning the
// config.
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.LogLevel)
	}

	validFormats := map[string]bool{
		"RGBA16": true, "RGBA32": true,
		"IA4": true, "IA8": true, "IA16": true,
		"CI4": true, "CI8": true,
	}
	if !validFormats[c.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.DefaultFormat)
	}

	validSizes := map[string]bool{"U8": true, "U16": true, "U32": true}
	if !validSizes[c.DefaultSize] {
		return fmt.Errorf("invalid default size: %s (valid: U8, U16, U32)", c.DefaultSize)
	}

	return nil
}

// getConfigFilePath is a function variable that returns the default config
// file path. Can be overridden in tests.
var getConfigFilePath = func() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "texquant", "config.json")
}
