// Package config loads the cubesim YAML configuration and builds the
// process logger from it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("config: invalid value")

// Config holds every setting the cubesim commands read.
type Config struct {
	FramesPerTurn int           `yaml:"frames_per_turn"`
	TickInterval  time.Duration `yaml:"tick_interval"`
	DBPath        string        `yaml:"db_path"`
	Record        bool          `yaml:"record"`
	Log           LogConfig     `yaml:"log"`
	Serve         ServeConfig   `yaml:"serve"`
	BLE           BLEConfig     `yaml:"ble"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	File   string `yaml:"file"`   // empty means stderr
}

// ServeConfig configures the websocket renderer host.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// BLEConfig configures the smart cube connection.
type BLEConfig struct {
	ScanTimeout time.Duration `yaml:"scan_timeout"`
	DeviceName  string        `yaml:"device_name"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		FramesPerTurn: 25,
		TickInterval:  10 * time.Millisecond,
		Record:        true,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8080",
		},
		BLE: BLEConfig{
			ScanTimeout: 30 * time.Second,
			DeviceName:  "GoCube",
		},
	}
}

// Dir returns ~/.cubesim.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".cubesim"), nil
}

// DefaultPath returns ~/.cubesim/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Write saves cfg as YAML, creating the parent directory.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.FramesPerTurn < 1 {
		return fmt.Errorf("%w: frames_per_turn must be positive, got %d", ErrInvalid, c.FramesPerTurn)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick_interval must be positive, got %s", ErrInvalid, c.TickInterval)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalid, c.Log.Format)
	}
	return nil
}
