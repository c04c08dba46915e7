package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// LogConfig controls the debug log.
type LogConfig struct {
	Enabled bool   `toml:"enabled"`
	Level   string `toml:"level"`
	File    string `toml:"file,omitempty"` // empty uses ~/.config/go-midiparse/debug.log
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Addr string `toml:"addr,omitempty"` // empty disables the HTTP listener
}

// Config is the main configuration structure
type Config struct {
	InputFormat   string        `toml:"input_format"`
	OutputFormat  string        `toml:"output_format"`
	ChunkSize     int           `toml:"chunk_size"`
	MaxSysExBytes int           `toml:"max_sysex_bytes"` // 0 = unlimited
	Color         bool          `toml:"color"`
	Palette       string        `toml:"palette,omitempty"` // GIMP .gpl file
	Log           LogConfig     `toml:"log"`
	Metrics       MetricsConfig `toml:"metrics"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		InputFormat:  "raw",
		OutputFormat: "text",
		ChunkSize:    4096,
		Color:        true,
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-midiparse"), nil
}

// ConfigPath returns the full path to config.toml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// LoadFile reads path on top of the defaults. Keys missing from the file keep
// their default values; unknown keys are an error.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated values and ranges.
func (c *Config) Validate() error {
	switch c.InputFormat {
	case "raw", "hex":
	default:
		return fmt.Errorf("input_format must be raw or hex, got %q", c.InputFormat)
	}
	switch c.OutputFormat {
	case "text", "json", "cbor":
	default:
		return fmt.Errorf("output_format must be text, json or cbor, got %q", c.OutputFormat)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.MaxSysExBytes < 0 {
		return fmt.Errorf("max_sysex_bytes must not be negative, got %d", c.MaxSysExBytes)
	}
	return nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
