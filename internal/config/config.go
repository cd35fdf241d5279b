// Package config loads and validates orchestrator configuration.
//
// DESIGN: YAML file with ${VAR} environment expansion, falling back to
// built-in defaults when no file is given. Each section owns its own
// Validate() so errors point at the offending key.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the orchestrator.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Budget   BudgetConfig   `yaml:"budget"`
	Provider ProviderConfig `yaml:"provider"`
	Cache    CacheConfig    `yaml:"cache"`
	Workflow WorkflowConfig `yaml:"workflow"`
	LogLevel string         `yaml:"log_level"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// BudgetConfig holds budget ledger settings.
type BudgetConfig struct {
	Total float64 `yaml:"total"` // USD ceiling for the session. 0 = use default.
}

// ProviderConfig holds reasoning provider settings.
type ProviderConfig struct {
	Backend string        `yaml:"backend"` // "nvidia" (default) or "bedrock"
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Region  string        `yaml:"region"` // bedrock only
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// WorkflowConfig holds workflow engine settings.
type WorkflowConfig struct {
	QualityThreshold float64 `yaml:"quality_threshold"`
	HistoryLimit     int     `yaml:"history_limit"`
	DBPath           string  `yaml:"db_path"` // empty disables persistence
}

// Default returns a config populated with built-in defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         DefaultServerPort,
			ReadTimeout:  DefaultServerReadTimeout,
			WriteTimeout: DefaultServerWriteTimeout,
		},
		Budget: BudgetConfig{Total: DefaultTotalBudget},
		Provider: ProviderConfig{
			Backend: "nvidia",
			APIKey:  os.Getenv("NEMOTRON_API_KEY"),
			BaseURL: "https://integrate.api.nvidia.com/v1",
			Timeout: DefaultProviderTimeout,
		},
		Cache: CacheConfig{MaxEntries: DefaultCacheMaxEntries},
		Workflow: WorkflowConfig{
			QualityThreshold: DefaultQualityThreshold,
			HistoryLimit:     DefaultHistoryLimit,
		},
		LogLevel: "info",
	}
}

// Load reads a YAML config file, expands ${VAR} references from the
// environment, and merges it over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if c.Budget.Total == 0 {
		c.Budget.Total = DefaultTotalBudget
	}
	if c.Provider.Backend == "" {
		c.Provider.Backend = "nvidia"
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = DefaultProviderTimeout
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = DefaultCacheMaxEntries
	}
	if c.Workflow.QualityThreshold == 0 {
		c.Workflow.QualityThreshold = DefaultQualityThreshold
	}
	if c.Workflow.HistoryLimit == 0 {
		c.Workflow.HistoryLimit = DefaultHistoryLimit
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [0, 65535], got %d", c.Server.Port)
	}
	if c.Budget.Total < 0 {
		return fmt.Errorf("budget.total must be >= 0, got %f", c.Budget.Total)
	}
	switch c.Provider.Backend {
	case "nvidia", "bedrock":
	default:
		return fmt.Errorf("provider.backend must be nvidia or bedrock, got %q", c.Provider.Backend)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must be >= 0, got %d", c.Cache.MaxEntries)
	}
	if c.Workflow.QualityThreshold < 0 || c.Workflow.QualityThreshold > 1 {
		return fmt.Errorf("workflow.quality_threshold must be in [0, 1], got %f", c.Workflow.QualityThreshold)
	}
	return nil
}
