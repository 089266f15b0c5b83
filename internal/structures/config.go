package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath string `yaml:"filePath" validate:"required|unixPath"`
	Compress bool   `yaml:"compress"`
	Seed     bool   `yaml:"seed"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

// DirectoryConfig holds the benefits directory endpoint and credentials.
// Credentials are intentionally optional: a missing value surfaces as a
// request failure, not as a startup error.
type DirectoryConfig struct {
	BaseURL           string        `yaml:"baseUrl"`
	User              string        `yaml:"user"`
	Password          string        `yaml:"password"`
	Clinic            string        `yaml:"clinic"`
	ProviderCode      string        `yaml:"providerCode"`
	HealthInsurerCode string        `yaml:"healthInsurerCode"`
	Timeout           time.Duration `yaml:"timeout"`
	Pacing            time.Duration `yaml:"pacing"`
}

type SyncConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server          `yaml:"webServer"`
	Persistence Persistence     `yaml:"persistence"`
	Logger      LoggerConfig    `yaml:"logger"`
	Directory   DirectoryConfig `yaml:"directory"`
	Sync        SyncConfig      `yaml:"sync"`
	Cache       CacheConfig     `yaml:"cache"`
	Metrics     MetricsConfig   `yaml:"metrics"`
}
