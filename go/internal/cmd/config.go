package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/gridiron/go/internal/league"
)

// Config is the service configuration file. Database settings come from the
// environment (see dbconfig); everything else lives here.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	League league.Policy `yaml:"league"`

	Audit struct {
		RetentionDays   int           `yaml:"retention_days"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`
		Outbox          struct {
			NotifyChannel    string        `yaml:"notify_channel"`
			FallbackInterval time.Duration `yaml:"fallback_interval"`
			BatchSize        int           `yaml:"batch_size"`
		} `yaml:"outbox"`
	} `yaml:"audit"`

	NATS struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"nats"`

	Migrations struct {
		Dir string `yaml:"dir"`
	} `yaml:"migrations"`
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.League = league.DefaultPolicy()
	cfg.Audit.RetentionDays = 90
	cfg.Audit.CleanupInterval = 24 * time.Hour
	cfg.Audit.Outbox.NotifyChannel = "audit_outbox_events"
	cfg.Audit.Outbox.FallbackInterval = 30 * time.Second
	cfg.Audit.Outbox.BatchSize = 100
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.Migrations.Dir = "migrations"
	return cfg
}

// loadConfig reads the yaml config at path, falling back to defaults when the
// file does not exist.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
