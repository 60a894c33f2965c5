package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Transport TransportConfig `yaml:"transport"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Flush     FlushConfig     `yaml:"flush"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Log       LogConfig       `yaml:"log"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "stdio" or "http"
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // "file" or "sqlite"
	Path    string `yaml:"path"`
}

type FlushConfig struct {
	CheckInterval Duration `yaml:"check_interval"`
	IdleAfter     Duration `yaml:"idle_after"`
}

// LifecycleConfig supplies the default thresholds applied to services that
// register without their own. Thresholds are daily-profit boundaries in
// dollars.
type LifecycleConfig struct {
	AutoScale      bool    `yaml:"auto_scale"`
	MaxDailySpend  float64 `yaml:"max_daily_spend"`
	KillThreshold  float64 `yaml:"kill_threshold"`
	ScaleThreshold float64 `yaml:"scale_threshold"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Duration parses YAML values like "30s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load reads configuration from an optional YAML file and environment
// variables. Environment overrides win over the file.
func Load() (Config, error) {
	cfg := Config{
		Transport: TransportConfig{Mode: "stdio"},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    "ledgermind.json",
		},
		Flush: FlushConfig{
			CheckInterval: Duration(10 * time.Second),
			IdleAfter:     Duration(30 * time.Second),
		},
		Lifecycle: LifecycleConfig{
			AutoScale:      true,
			MaxDailySpend:  100,
			KillThreshold:  -10,
			ScaleThreshold: 50,
		},
		Log: LogConfig{Level: "info"},
	}

	if path := os.Getenv("LEDGERMIND_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if mode := os.Getenv("LEDGERMIND_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if host := os.Getenv("LEDGERMIND_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("LEDGERMIND_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LEDGERMIND_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if backend := os.Getenv("LEDGERMIND_STATE_BACKEND"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if path := os.Getenv("LEDGERMIND_STATE_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if level := os.Getenv("LEDGERMIND_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if cfg.Transport.Mode != "stdio" && cfg.Transport.Mode != "http" {
		return Config{}, fmt.Errorf("invalid transport mode %q", cfg.Transport.Mode)
	}
	return cfg, nil
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
