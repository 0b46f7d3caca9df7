package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Medium    MediumConfig    `yaml:"medium"`
	Data      DataConfig      `yaml:"data"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// RateLimit is a per-IP limit such as "100-M". Empty disables limiting.
	RateLimit     string `yaml:"rate_limit"`
	SecureHeaders bool   `yaml:"secure_headers"`
}

type TransportConfig struct {
	// Mode is "stdio" or "http".
	Mode string `yaml:"mode"`
}

// MediumConfig selects the durable backend the entity stores mirror to.
type MediumConfig struct {
	// Driver is one of none, memory, file, sqlite, postgres, redis, s3.
	Driver string   `yaml:"driver"`
	Path   string   `yaml:"path"`
	// DSN is the connection string for postgres and redis.
	DSN    string   `yaml:"dsn"`
	S3     S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	Prefix    string `yaml:"prefix"`
	PathStyle bool   `yaml:"path_style"`
}

// DataConfig locates the SQLite database backing tasks and the activity journal.
type DataConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          8080,
			SecureHeaders: true,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Medium: MediumConfig{
			Driver: "sqlite",
			Path:   "studyvault-state.db",
		},
		Data: DataConfig{
			Path: "studyvault.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("STUDYVAULT_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("STUDYVAULT_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("STUDYVAULT_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STUDYVAULT_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if rate, ok := os.LookupEnv("STUDYVAULT_RATE_LIMIT"); ok {
		cfg.Server.RateLimit = rate
	}
	if secureHeaders := os.Getenv("STUDYVAULT_SECURE_HEADERS"); secureHeaders != "" {
		cfg.Server.SecureHeaders = strings.EqualFold(secureHeaders, "true")
	}
	if mode := os.Getenv("STUDYVAULT_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if driver := os.Getenv("STUDYVAULT_MEDIUM_DRIVER"); driver != "" {
		cfg.Medium.Driver = driver
	}
	if path := os.Getenv("STUDYVAULT_MEDIUM_PATH"); path != "" {
		cfg.Medium.Path = path
	}
	if dsn := os.Getenv("STUDYVAULT_MEDIUM_DSN"); dsn != "" {
		cfg.Medium.DSN = dsn
	}
	if bucket := os.Getenv("STUDYVAULT_MEDIUM_S3_BUCKET"); bucket != "" {
		cfg.Medium.S3.Bucket = bucket
	}
	if region := os.Getenv("STUDYVAULT_MEDIUM_S3_REGION"); region != "" {
		cfg.Medium.S3.Region = region
	}
	if endpoint := os.Getenv("STUDYVAULT_MEDIUM_S3_ENDPOINT"); endpoint != "" {
		cfg.Medium.S3.Endpoint = endpoint
	}
	if prefix := os.Getenv("STUDYVAULT_MEDIUM_S3_PREFIX"); prefix != "" {
		cfg.Medium.S3.Prefix = prefix
	}
	if pathStyle := os.Getenv("STUDYVAULT_MEDIUM_S3_PATH_STYLE"); pathStyle != "" {
		cfg.Medium.S3.PathStyle = strings.EqualFold(pathStyle, "true")
	}
	if dataPath := os.Getenv("STUDYVAULT_DATA_PATH"); dataPath != "" {
		cfg.Data.Path = dataPath
	}
	if level := os.Getenv("STUDYVAULT_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("STUDYVAULT_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	switch c.Medium.Driver {
	case "none", "memory", "file", "sqlite", "postgres", "redis", "s3":
	default:
		return fmt.Errorf("invalid medium driver %q", c.Medium.Driver)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
