package config

// Config is the root configuration structure.
type Config struct {
	Library  LibraryConfig  `toml:"library"`
	Audio    AudioConfig    `toml:"audio"`
	Storage  StorageConfig  `toml:"storage"`
	Cache    CacheConfig    `toml:"cache"`
	Defaults DefaultsConfig `toml:"defaults"`
	TUI      TUIConfig      `toml:"tui"`
	Log      LogConfig      `toml:"log"`
}

// LibraryConfig points at the catalog file.
type LibraryConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

// AudioConfig holds playback engine settings.
type AudioConfig struct {
	LoadTimeout  int            `toml:"load_timeout"`  // seconds
	PollInterval int            `toml:"poll_interval"` // milliseconds
	SampleRate   int            `toml:"sample_rate"`
	BufferMS     int            `toml:"buffer_ms"`
	Fallback     FallbackConfig `toml:"fallback"`
}

// FallbackConfig controls substitution of known-good sources when a track
// fails to decode. Intended for diagnosing playback, not for production use.
type FallbackConfig struct {
	Enabled bool     `toml:"enabled"`
	Sources []string `toml:"sources"`
}

// StorageConfig holds S3-compatible media storage credentials used for s3:// URLs.
type StorageConfig struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
}

// CacheConfig holds the optional redis catalog cache settings.
type CacheConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTL           int    `toml:"ttl"` // seconds
}

// Enabled returns true if a redis address is configured.
func (c *CacheConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// DefaultsConfig holds default playback settings.
type DefaultsConfig struct {
	Volume  int    `toml:"volume"`
	Shuffle bool   `toml:"shuffle"`
	Repeat  string `toml:"repeat"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme"`
	RefreshInterval int    `toml:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSize    int    `toml:"max_size"` // megabytes
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"` // days
	Compress   bool   `toml:"compress"`
}
