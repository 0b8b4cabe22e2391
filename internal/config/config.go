package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rpggio/gantt/internal/domain/history"
	"github.com/rpggio/gantt/internal/domain/timeline"
	"gopkg.in/yaml.v3"
)

// Transport modes.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// ErrInvalidConfig indicates a configuration value outside its allowed range.
var ErrInvalidConfig = errors.New("invalid config")

// Config defines server configuration.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	DB        DBConfig         `yaml:"db"`
	Log       LogConfig        `yaml:"log"`
	Transport TransportConfig  `yaml:"transport"`
	Auth      AuthConfig       `yaml:"auth"`
	History   HistoryConfig    `yaml:"history"`
	Timeline  timeline.Options `yaml:"timeline"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Path, when set, sends logs to a size-capped file instead of the console.
	Path string `yaml:"path"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
}

type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "gantt.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: TransportHTTP,
		},
		Auth: AuthConfig{
			Enabled: true,
		},
		History: HistoryConfig{
			Capacity: history.DefaultCapacity,
		},
		Timeline: timeline.DefaultOptions(),
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("GANTT_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("GANTT_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("GANTT_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GANTT_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("GANTT_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("GANTT_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("GANTT_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if mode := os.Getenv("GANTT_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if authStr := os.Getenv("GANTT_AUTH_ENABLED"); authStr != "" {
		enabled, err := strconv.ParseBool(authStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GANTT_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = enabled
	}
	if capStr := os.Getenv("GANTT_HISTORY_CAPACITY"); capStr != "" {
		capacity, err := strconv.Atoi(capStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GANTT_HISTORY_CAPACITY: %w", err)
		}
		cfg.History.Capacity = capacity
	}
	if ppdStr := os.Getenv("GANTT_PIXELS_PER_DAY"); ppdStr != "" {
		ppd, err := strconv.ParseFloat(ppdStr, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GANTT_PIXELS_PER_DAY: %w", err)
		}
		cfg.Timeline.PixelsPerDay = ppd
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case TransportHTTP, TransportStdio:
	default:
		return fmt.Errorf("%w: transport mode %q", ErrInvalidConfig, c.Transport.Mode)
	}
	if c.Transport.Mode == TransportHTTP && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("%w: server port %d", ErrInvalidConfig, c.Server.Port)
	}
	if c.History.Capacity <= 0 {
		return fmt.Errorf("%w: history capacity %d", ErrInvalidConfig, c.History.Capacity)
	}
	if err := c.Timeline.Validate(); err != nil {
		return fmt.Errorf("%w: timeline: %w", ErrInvalidConfig, err)
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
