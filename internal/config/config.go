package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all library and command configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Download DownloadConfig `yaml:"download"`
	Logging  LogConfig      `yaml:"logging"`
}

// HTTPConfig holds transport configuration.
type HTTPConfig struct {
	UserAgent    string        `envconfig:"SCR_USER_AGENT" default:"scr/1.0" yaml:"user_agent"`
	Timeout      time.Duration `envconfig:"SCR_HTTP_TIMEOUT" default:"30s" yaml:"timeout"`
	MaxRedirects int           `envconfig:"SCR_HTTP_MAX_REDIRECTS" default:"10" yaml:"max_redirects"`
	MaxBodyBytes int64         `envconfig:"SCR_HTTP_MAX_BODY_BYTES" default:"10485760" yaml:"max_body_bytes"`
	RateLimit    float64       `envconfig:"SCR_HTTP_RATE_LIMIT" default:"0" yaml:"rate_limit"`
}

// FetchConfig holds document acquisition configuration.
type FetchConfig struct {
	Scheme string `envconfig:"SCR_SCHEME" default:"https" yaml:"scheme"`
}

// DownloadConfig holds file retrieval configuration.
type DownloadConfig struct {
	CreateDirs bool `envconfig:"SCR_DOWNLOAD_CREATE_DIRS" default:"false" yaml:"create_dirs"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadFile loads the environment and overlays the YAML file at path.
// Keys present in the file win over the environment.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the library cannot honor.
func (c *Config) Validate() error {
	switch c.Fetch.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("invalid scheme %q: must be http or https", c.Fetch.Scheme)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s", c.HTTP.Timeout)
	}
	if c.HTTP.MaxRedirects < 0 {
		return fmt.Errorf("invalid max redirects %d", c.HTTP.MaxRedirects)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max body bytes %d", c.HTTP.MaxBodyBytes)
	}
	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit %v", c.HTTP.RateLimit)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			UserAgent:    "scr/1.0",
			Timeout:      30 * time.Second,
			MaxRedirects: 10,
			MaxBodyBytes: 10 * 1024 * 1024,
			RateLimit:    0,
		},
		Fetch: FetchConfig{
			Scheme: "https",
		},
		Download: DownloadConfig{
			CreateDirs: false,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
