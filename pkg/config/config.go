package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"wavebg/internal/util"
)

// Config represents the main configuration
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Log      LogConfig      `yaml:"log"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// WindowConfig describes the host window the background is mounted in
type WindowConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Title       string `yaml:"title"`
	Fullscreen  bool   `yaml:"fullscreen"`
	VSync       bool   `yaml:"vsync"`
	Transparent bool   `yaml:"transparent"` // request an alpha-capable framebuffer
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // optional; mirrors console output
}

// SnapshotConfig controls headless frame rendering
type SnapshotConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Time   float64 `yaml:"time"`   // seconds after mount
	Scale  int     `yaml:"scale"`  // render at 1/scale, then upsample
	Format string  `yaml:"format"` // png, webp, tga
	Output string  `yaml:"output"`
}

// Supported snapshot formats
var snapshotFormats = []string{"png", "webp", "tga"}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:       1280,
			Height:      720,
			Title:       "Water",
			Fullscreen:  false,
			VSync:       true,
			Transparent: false,
		},
		Log: LogConfig{
			Level: "info",
		},
		Snapshot: SnapshotConfig{
			Width:  800,
			Height: 600,
			Time:   0,
			Scale:  1,
			Format: "png",
			Output: "wave.png",
		},
	}
}

// LoadConfig loads the configuration from a file. A missing file yields the
// defaults without error.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	if !util.FileExists(filePath) {
		return config, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return config, fmt.Errorf("error reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return config, fmt.Errorf("error parsing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// Validate rejects values the host or the snapshot tool cannot use
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	return c.Snapshot.Validate()
}

// Validate checks the snapshot section on its own, so flag overrides can be
// re-checked
func (s *SnapshotConfig) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid snapshot size %dx%d", s.Width, s.Height)
	}
	if s.Scale < 1 {
		return fmt.Errorf("invalid snapshot scale %d", s.Scale)
	}
	if s.Time < 0 {
		return fmt.Errorf("invalid snapshot time %v", s.Time)
	}

	format := strings.ToLower(s.Format)
	for _, f := range snapshotFormats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unsupported snapshot format %q (want one of %s)", s.Format, strings.Join(snapshotFormats, ", "))
}
