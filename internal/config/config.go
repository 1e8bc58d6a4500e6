// Package config loads the TOML configuration file. Every field has a
// working default; a missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	DefaultChannel string    `toml:"default_channel"`
	UI             UIConfig  `toml:"ui"`
	Log            LogConfig `toml:"log"`
}

// UIConfig represents UI-related configuration
type UIConfig struct {
	PreviewEnabled bool `toml:"preview_enabled"`
	// PreviewWidth is the preview pane share in percent of columns
	PreviewWidth int  `toml:"preview_width"`
	HelpBar      bool `toml:"help_bar"`
	// TickMS is the render tick interval in milliseconds
	TickMS int `toml:"tick_ms"`
}

// LogConfig sets logging defaults that flags can override
type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DefaultChannel: "files",
		UI: UIConfig{
			PreviewEnabled: true,
			PreviewWidth:   50,
			HelpBar:        true,
			TickMS:         60,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the config from the user config directory, falling back
// to defaults when no file exists.
func Load() (*Config, error) {
	path, err := defaultPath()
	if err != nil {
		return Default(), nil
	}
	cfg, err := LoadFromPath(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFromPath reads the config from a specific file
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func defaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "trawl", "config.toml"), nil
}

// normalize clamps values a hand-edited file can push out of range
func (c *Config) normalize() {
	if c.UI.PreviewWidth < 10 {
		c.UI.PreviewWidth = 10
	}
	if c.UI.PreviewWidth > 90 {
		c.UI.PreviewWidth = 90
	}
	if c.UI.TickMS < 16 {
		c.UI.TickMS = 16
	}
	if c.UI.TickMS > 1000 {
		c.UI.TickMS = 1000
	}
	if c.DefaultChannel == "" {
		c.DefaultChannel = "files"
	}
}
