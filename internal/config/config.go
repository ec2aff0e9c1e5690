package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server  ServerConfig            `yaml:"server"`
	DB      DBConfig                `yaml:"db"`
	Log     LogConfig               `yaml:"log"`
	User    UserConfig              `yaml:"user"`
	Sources map[string]SourceConfig `yaml:"sources"`
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
}

// UserConfig identifies the signed-in person for team-mode views.
type UserConfig struct {
	PersonID string `yaml:"person_id"`
}

// SourceConfig configures one entity kind's table source. Type selects
// the implementation; the other fields apply per type.
type SourceConfig struct {
	Type  string `yaml:"type"`            // xlsx, sqlite or http
	Path  string `yaml:"path,omitempty"`  // xlsx workbook or sqlite file
	Sheet string `yaml:"sheet,omitempty"` // xlsx sheet, default first
	Table string `yaml:"table,omitempty"` // sqlite table name
	URL   string `yaml:"url,omitempty"`   // http endpoint
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "opsdeck.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("OPSDECK_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("OPSDECK_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("OPSDECK_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OPSDECK_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("OPSDECK_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("OPSDECK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if personID := os.Getenv("OPSDECK_USER_ID"); personID != "" {
		cfg.User.PersonID = personID
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
