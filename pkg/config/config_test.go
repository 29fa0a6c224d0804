package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wavebg.yaml")
	data := []byte(`
window:
  width: 1920
  height: 1080
  vsync: false
log:
  level: debug
snapshot:
  format: webp
  scale: 2
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 || cfg.Window.VSync {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.Window.Title != "Water" {
		t.Errorf("title = %q, want default kept", cfg.Window.Title)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Snapshot.Format != "webp" || cfg.Snapshot.Scale != 2 || cfg.Snapshot.Width != 800 {
		t.Errorf("snapshot = %+v", cfg.Snapshot)
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("window: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	want := DefaultConfig()
	want.Snapshot.Time = 12.5
	want.Log.File = "logs/wavebg.log"

	if err := SaveConfig(want, path); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero window", func(c *Config) { c.Window.Width = 0 }, true},
		{"negative snapshot height", func(c *Config) { c.Snapshot.Height = -1 }, true},
		{"zero scale", func(c *Config) { c.Snapshot.Scale = 0 }, true},
		{"negative time", func(c *Config) { c.Snapshot.Time = -1 }, true},
		{"unknown format", func(c *Config) { c.Snapshot.Format = "gif" }, true},
		{"upper-case format", func(c *Config) { c.Snapshot.Format = "WEBP" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
