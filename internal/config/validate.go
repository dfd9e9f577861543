package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/tessro/bhajan/internal/core"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Audio.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("audio: %w", err))
	}
	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}
	if err := c.Defaults.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("defaults: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks AudioConfig for errors.
func (c *AudioConfig) Validate() error {
	if c.LoadTimeout < 0 {
		return errors.New("load_timeout must be non-negative")
	}
	if c.PollInterval < 0 {
		return errors.New("poll_interval must be non-negative")
	}
	if c.SampleRate < 0 {
		return errors.New("sample_rate must be non-negative")
	}
	for _, s := range c.Fallback.Sources {
		if _, err := url.Parse(s); err != nil {
			return fmt.Errorf("invalid fallback source %q: %w", s, err)
		}
	}
	return nil
}

// Validate checks CacheConfig for errors.
func (c *CacheConfig) Validate() error {
	if c.RedisDB < 0 {
		return errors.New("redis_db must be non-negative")
	}
	if c.TTL < 0 {
		return errors.New("ttl must be non-negative")
	}
	return nil
}

// Validate checks DefaultsConfig for errors.
func (c *DefaultsConfig) Validate() error {
	if c.Volume < 0 || c.Volume > 100 {
		return errors.New("volume must be between 0 and 100")
	}
	if _, err := core.ParseRepeatMode(c.Repeat); err != nil {
		return err
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", c.Theme)
	}
	if c.RefreshInterval < 0 {
		return errors.New("refresh_interval must be non-negative")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	if c.MaxSize < 0 || c.MaxBackups < 0 || c.MaxAge < 0 {
		return errors.New("rotation limits must be non-negative")
	}
	return nil
}
