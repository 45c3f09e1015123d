// Package config loads the application configuration from an optional YAML
// file, filling in defaults for anything unset.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses YAML strings like "45s" or "2m" into a time.Duration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the application configuration.
type Config struct {
	// DataDir holds uploads, the database and generated artifacts.
	DataDir string `yaml:"data_dir"`

	// BoundariesURL overrides the administrative boundary dataset URL.
	BoundariesURL string `yaml:"boundaries_url"`

	// BoundariesFile points at a pre-bundled local boundary dataset; when
	// set it is preferred over the URL.
	BoundariesFile string `yaml:"boundaries_file"`

	// RenderTimeout bounds one whole generation job, tile fetches included.
	RenderTimeout Duration `yaml:"render_timeout"`

	// FontPaths are tried in order before falling back to the built-in
	// fonts.
	FontPaths []string `yaml:"font_paths"`

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		DataDir:       ".data",
		RenderTimeout: Duration(5 * time.Minute),
		LogLevel:      "info",
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = Default().DataDir
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = Default().RenderTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = Default().LogLevel
	}
	return cfg, nil
}
