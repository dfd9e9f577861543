package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.bhajanrc, $XDG_CONFIG_HOME/bhajan/config.toml, ~/.config/bhajan/config.toml
// A .env file in the working directory is loaded first; it never overrides
// variables already set in the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// Try loading from file
	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadTimeoutDuration returns the per-track load timeout.
func (c *AudioConfig) LoadTimeoutDuration() time.Duration {
	return time.Duration(c.LoadTimeout) * time.Second
}

// PollIntervalDuration returns the position poll interval.
func (c *AudioConfig) PollIntervalDuration() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

// BufferDuration returns the speaker buffer length.
func (c *AudioConfig) BufferDuration() time.Duration {
	return time.Duration(c.BufferMS) * time.Millisecond
}

// TTLDuration returns the cache entry lifetime.
func (c *CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// VolumeLevel returns the default volume as a 0.0-1.0 level.
func (c *DefaultsConfig) VolumeLevel() float64 {
	return float64(c.Volume) / 100
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".bhajanrc"),
	}

	paths = append(paths, filepath.Join(configDir(home), "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// configDir returns $XDG_CONFIG_HOME/bhajan or ~/.config/bhajan.
func configDir(home string) string {
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfig, "bhajan")
}

func defaultLibraryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "library.toml"
	}
	return filepath.Join(configDir(home), "library.toml")
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Library
	if v := os.Getenv("BHAJAN_LIBRARY_PATH"); v != "" {
		cfg.Library.Path = v
	}

	// Audio
	if v := os.Getenv("BHAJAN_AUDIO_LOAD_TIMEOUT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Audio.LoadTimeout = i
		}
	}
	if v := os.Getenv("BHAJAN_AUDIO_FALLBACK_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Audio.Fallback.Enabled = b
		}
	}
	if v := os.Getenv("BHAJAN_AUDIO_FALLBACK_SOURCES"); v != "" {
		cfg.Audio.Fallback.Sources = splitList(v)
	}

	// Storage
	if v := os.Getenv("BHAJAN_STORAGE_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("BHAJAN_STORAGE_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv("BHAJAN_STORAGE_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}

	// Cache
	if v := os.Getenv("BHAJAN_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("BHAJAN_REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}

	// Log
	if v := os.Getenv("BHAJAN_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BHAJAN_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
