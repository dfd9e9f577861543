package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Library: LibraryConfig{
			Path: defaultLibraryPath(),
		},
		Audio: AudioConfig{
			LoadTimeout:  30,
			PollInterval: 1000,
			SampleRate:   44100,
			BufferMS:     100,
		},
		Storage: StorageConfig{
			Region: "us-east-1",
			UseSSL: true,
		},
		Cache: CacheConfig{
			TTL: 300,
		},
		Defaults: DefaultsConfig{
			Volume:  80,
			Shuffle: false,
			Repeat:  "none",
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 500,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Library
	if c.Library.Path == "" {
		c.Library.Path = d.Library.Path
	}

	// Audio
	if c.Audio.LoadTimeout == 0 {
		c.Audio.LoadTimeout = d.Audio.LoadTimeout
	}
	if c.Audio.PollInterval == 0 {
		c.Audio.PollInterval = d.Audio.PollInterval
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = d.Audio.SampleRate
	}
	if c.Audio.BufferMS == 0 {
		c.Audio.BufferMS = d.Audio.BufferMS
	}

	// Storage
	if c.Storage.Region == "" {
		c.Storage.Region = d.Storage.Region
	}

	// Cache
	if c.Cache.TTL == 0 {
		c.Cache.TTL = d.Cache.TTL
	}

	// Defaults
	if c.Defaults.Volume == 0 {
		c.Defaults.Volume = d.Defaults.Volume
	}
	if c.Defaults.Repeat == "" {
		c.Defaults.Repeat = d.Defaults.Repeat
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = d.Log.MaxSize
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = d.Log.MaxBackups
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = d.Log.MaxAge
	}
}
