package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// AnalysisConfig points at the model server
type AnalysisConfig struct {
	URL               string   `toml:"url"`
	Model             string   `toml:"model"`
	Timeout           Duration `toml:"timeout"`
	RequestsPerMinute int      `toml:"requests_per_minute"`
}

// MIDIConfig controls live keyboard input
type MIDIConfig struct {
	Enabled    bool     `toml:"enabled"`
	Ports      []string `toml:"ports"` // port name substrings; empty = any
	DebounceMS int      `toml:"debounce_ms"`
}

// UIConfig stores terminal preferences
type UIConfig struct {
	Palette string `toml:"palette"` // path to a .gpl file; empty = built-in
	Columns int    `toml:"columns"`
	Rows    int    `toml:"rows"`
}

// ServerConfig is the HTTP host
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Config is the main configuration structure
type Config struct {
	Analysis AnalysisConfig `toml:"analysis"`
	MIDI     MIDIConfig     `toml:"midi"`
	UI       UIConfig       `toml:"ui"`
	Server   ServerConfig   `toml:"server"`
}

// Duration is a time.Duration written as "30s" in TOML
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			URL:               "http://127.0.0.1:11434",
			Model:             "qwen2.5:7b",
			Timeout:           Duration{60 * time.Second},
			RequestsPerMinute: 30,
		},
		MIDI: MIDIConfig{
			Enabled:    true,
			DebounceMS: 30,
		},
		UI: UIConfig{
			Columns: 56,
			Rows:    9,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "theory-keys"), nil
}

// ConfigPath returns the full path to config.toml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads path over the defaults. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values nothing downstream can use
func (c *Config) Validate() error {
	if c.Analysis.Timeout.Duration < 0 {
		return fmt.Errorf("analysis.timeout must not be negative")
	}
	if c.Analysis.RequestsPerMinute < 0 {
		return fmt.Errorf("analysis.requests_per_minute must not be negative")
	}
	if c.MIDI.DebounceMS < 0 {
		return fmt.Errorf("midi.debounce_ms must not be negative")
	}
	if c.UI.Columns < 0 || c.UI.Rows < 0 {
		return fmt.Errorf("ui.columns and ui.rows must not be negative")
	}
	return nil
}

// Debounce returns the MIDI settle time
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.MIDI.DebounceMS) * time.Millisecond
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}
