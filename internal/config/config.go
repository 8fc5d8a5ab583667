package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port string `toml:"port"`
}

type GraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type DatabaseConfig struct {
	URL string `toml:"url"`
}

type DetectionConfig struct {
	LookbackYears     int     `toml:"lookback_years"`
	MaxOwnershipDepth int     `toml:"max_ownership_depth"`
	RowLimit          int     `toml:"row_limit"`
	MinPartnerStake   float64 `toml:"min_partner_stake"`
	LatencyBudgetMS   int     `toml:"latency_budget_ms"`
	PersistThreshold  int     `toml:"persist_threshold"`
}

type AlertsConfig struct {
	SMTPHost         string            `toml:"smtp_host"`
	SMTPPort         int               `toml:"smtp_port"`
	SMTPUser         string            `toml:"smtp_user"`
	SMTPPassword     string            `toml:"smtp_password"`
	From             string            `toml:"from"`
	HeartbeatSeconds int               `toml:"heartbeat_seconds"`
	Recipients       map[string]string `toml:"recipients"` // user id -> email
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Graph     GraphConfig     `toml:"graph"`
	Database  DatabaseConfig  `toml:"database"`
	Detection DetectionConfig `toml:"detection"`
	Alerts    AlertsConfig    `toml:"alerts"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// Environment variables win over the file so deployments can keep secrets out
// of it.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("GRAPH_URI"); v != "" {
		c.Graph.URI = v
	}
	if v := os.Getenv("GRAPH_USER"); v != "" {
		c.Graph.User = v
	}
	if v := os.Getenv("GRAPH_PASSWORD"); v != "" {
		c.Graph.Password = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.Alerts.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Alerts.SMTPPort = port
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		c.Alerts.SMTPUser = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.Alerts.SMTPPassword = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Graph.URI == "" {
		c.Graph.URI = "bolt://localhost:7687"
	}
	if c.Detection.LookbackYears <= 0 {
		c.Detection.LookbackYears = 5
	}
	if c.Detection.MaxOwnershipDepth <= 0 {
		c.Detection.MaxOwnershipDepth = 3
	}
	if c.Detection.RowLimit <= 0 {
		c.Detection.RowLimit = 100
	}
	if c.Detection.MinPartnerStake <= 0 {
		c.Detection.MinPartnerStake = 25
	}
	if c.Detection.LatencyBudgetMS <= 0 {
		c.Detection.LatencyBudgetMS = 500
	}
	if c.Detection.PersistThreshold <= 0 {
		c.Detection.PersistThreshold = 50
	}
	if c.Alerts.SMTPPort <= 0 {
		c.Alerts.SMTPPort = 25
	}
	if c.Alerts.HeartbeatSeconds <= 0 {
		c.Alerts.HeartbeatSeconds = 30
	}
}
