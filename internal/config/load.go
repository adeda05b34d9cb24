package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Validation errors.
var (
	ErrInvalidWindow    = errors.New("window size must be positive")
	ErrInvalidDurations = errors.New("animation durations must satisfy 0 < min <= max")
	ErrInvalidCamera    = errors.New("camera requires 0 < near < far and 0 < min_distance <= max_distance")
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority over the standard locations
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the viewer cannot run with.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidWindow, c.Window.Width, c.Window.Height)
	}
	a := c.Animation
	if a.MinDuration <= 0 || a.MaxDuration < a.MinDuration {
		return fmt.Errorf("%w: min=%s max=%s", ErrInvalidDurations, a.MinDuration, a.MaxDuration)
	}
	cam := c.Camera
	if cam.Near <= 0 || cam.Far <= cam.Near || cam.MinDistance <= 0 || cam.MaxDistance < cam.MinDistance {
		return ErrInvalidCamera
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "ArmViewer")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "ArmViewer")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "armviewer")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "armviewer")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
