package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{
		Defaults: DefaultsConfig{Volume: 40},
		Log:      LogConfig{Level: "debug"},
	}
	cfg.ApplyDefaults()

	if cfg.Defaults.Volume != 40 {
		t.Errorf("Defaults.Volume = %d, want 40 (explicit value kept)", cfg.Defaults.Volume)
	}
	if cfg.Defaults.Repeat != "none" {
		t.Errorf("Defaults.Repeat = %q, want %q", cfg.Defaults.Repeat, "none")
	}
	if cfg.Audio.LoadTimeout != 30 {
		t.Errorf("Audio.LoadTimeout = %d, want 30", cfg.Audio.LoadTimeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Audio.Fallback.Enabled {
		t.Error("Audio.Fallback.Enabled = true, want false by default")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"volume too high", func(c *Config) { c.Defaults.Volume = 150 }, "volume must be between 0 and 100"},
		{"bad repeat", func(c *Config) { c.Defaults.Repeat = "track" }, "invalid repeat mode"},
		{"bad theme", func(c *Config) { c.TUI.Theme = "neon" }, "invalid theme"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "invalid log level"},
		{"negative timeout", func(c *Config) { c.Audio.LoadTimeout = -1 }, "load_timeout"},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -5 }, "ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[audio]
load_timeout = 12

[audio.fallback]
enabled = true
sources = ["https://example.com/a.mp3"]

[defaults]
repeat = "all"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	t.Setenv("BHAJAN_LOG_LEVEL", "warn")
	t.Setenv("BHAJAN_AUDIO_FALLBACK_SOURCES", "https://a.test/x.mp3, https://b.test/y.wav")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if got := cfg.Audio.LoadTimeoutDuration(); got != 12*time.Second {
		t.Errorf("LoadTimeoutDuration() = %v, want 12s", got)
	}
	if !cfg.Audio.Fallback.Enabled {
		t.Error("Fallback.Enabled = false, want true")
	}
	if len(cfg.Audio.Fallback.Sources) != 2 || cfg.Audio.Fallback.Sources[1] != "https://b.test/y.wav" {
		t.Errorf("Fallback.Sources = %v, want env override", cfg.Audio.Fallback.Sources)
	}
	if cfg.Defaults.Repeat != "all" {
		t.Errorf("Defaults.Repeat = %q, want %q", cfg.Defaults.Repeat, "all")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
	if got := cfg.Audio.PollIntervalDuration(); got != time.Second {
		t.Errorf("PollIntervalDuration() = %v, want 1s", got)
	}
}

func TestVolumeLevel(t *testing.T) {
	d := DefaultsConfig{Volume: 80}
	if got := d.VolumeLevel(); got != 0.8 {
		t.Errorf("VolumeLevel() = %v, want 0.8", got)
	}
}
