// Package config loads blockedit settings from a YAML file overlaid by
// BLOCKEDIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config is the configuration data as present in a config file, typically
// 'blockedit.yaml'. Every field can be overridden from the environment.
type Config struct {
	LogLevel  string `yaml:"log-level" env:"BLOCKEDIT_LOG_LEVEL"`
	Prefix    string `yaml:"prefix" env:"BLOCKEDIT_PREFIX"`
	Renderer  string `yaml:"renderer" env:"BLOCKEDIT_RENDERER"`
	Schema    string `yaml:"schema" env:"BLOCKEDIT_SCHEMA"`
	Templates string `yaml:"templates" env:"BLOCKEDIT_TEMPLATES"`
	Output    string `yaml:"output" env:"BLOCKEDIT_OUTPUT"`
}

// Output formats accepted by the edit command.
const (
	OutputJSON   = "json"
	OutputForm   = "form"
	OutputPretty = "pretty"
)

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel: "info",
		Renderer: "html",
		Output:   OutputJSON,
	}
}

// Parse reads YAML on top of the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

// Load reads the file at path (skipped when path is empty), applies the
// environment and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if cfg, err = Parse(data); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any BLOCKEDIT_* variables that are set.
func ApplyEnv(cfg *Config) error {
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch strings.ToLower(c.Output) {
	case OutputJSON, OutputForm, OutputPretty:
	default:
		return fmt.Errorf("config: unknown output format %q", c.Output)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel; an empty level means info.
func (c Config) Level() (zerolog.Level, error) {
	if strings.TrimSpace(c.LogLevel) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("config: log level: %w", err)
	}
	return level, nil
}
