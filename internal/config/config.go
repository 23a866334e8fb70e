package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	MauticMail MauticMailConfig `yaml:"mauticmail"`
	Redis      RedisConfig      `yaml:"redis"`
	Dashboard  DashboardConfig  `yaml:"dashboard"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int      `yaml:"port"`
	Host        string   `yaml:"host"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// MauticMailConfig holds upstream metrics API configuration
type MauticMailConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	UserID         string `yaml:"user_id"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
}

// Timeout returns the configured timeout as a duration
func (c MauticMailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RedisConfig holds the optional webhook cache backend. When Addr is
// empty the cache falls back to an in-process map.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DashboardConfig holds orchestrator tuning knobs
type DashboardConfig struct {
	DefaultRangeDays int `yaml:"default_range_days"`
	DebounceMillis   int `yaml:"debounce_millis"`
}

// Debounce returns the filter-change debounce window as a duration
func (c DashboardConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMillis) * time.Millisecond
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	if cfg.MauticMail.BaseURL == "" {
		cfg.MauticMail.BaseURL = "http://localhost:8081"
	}
	if cfg.MauticMail.TimeoutSeconds == 0 {
		cfg.MauticMail.TimeoutSeconds = 30
	}
	if cfg.MauticMail.MaxRetries == 0 {
		cfg.MauticMail.MaxRetries = 2
	}
	if cfg.Dashboard.DefaultRangeDays == 0 {
		cfg.Dashboard.DefaultRangeDays = 30
	}
	if cfg.Dashboard.DebounceMillis == 0 {
		cfg.Dashboard.DebounceMillis = 300
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if baseURL := os.Getenv("MAUTICMAIL_BASE_URL"); baseURL != "" {
		cfg.MauticMail.BaseURL = baseURL
	}
	if apiKey := os.Getenv("MAUTICMAIL_API_KEY"); apiKey != "" {
		cfg.MauticMail.APIKey = apiKey
	}
	if userID := os.Getenv("MAUTICMAIL_USER_ID"); userID != "" {
		cfg.MauticMail.UserID = userID
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	return cfg, nil
}
