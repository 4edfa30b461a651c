// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents the runtime configuration. It can be loaded from a JSON
// file, overlaid with environment variables, and finally overridden by CLI
// flags. All fields are optional; missing values use defaults.
type Config struct {
	// Storage
	DatabaseURL   string `json:"database_url,omitempty"`   // PostgreSQL connection URL
	RedisAddr     string `json:"redis_addr,omitempty"`     // Redis address, empty disables caching
	RedisPassword string `json:"redis_password,omitempty"` // Redis password
	RedisDB       int    `json:"redis_db,omitempty"`       // Redis database number

	// Server
	Port int `json:"port,omitempty"` // HTTP listen port

	// Scraping
	UserAgent   string `json:"user_agent,omitempty"`    // User agent for site requests
	PageDelayMS int    `json:"page_delay_ms,omitempty"` // Pause between history pages
	UseBrowser  bool   `json:"use_browser,omitempty"`   // Headless browser for rendered values
	EnrichLimit int    `json:"enrich_limit,omitempty"`  // Max films per enrichment run

	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Defaults for fields left unset everywhere.
const (
	DefaultPort        = 8080
	DefaultPageDelayMS = 1000
	DefaultEnrichLimit = 200
)

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overlays environment variables onto unset fields. Environment
// wins over the config file so deployments can override without editing it.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Port = n
		}
	}
	if v := os.Getenv("SCRAPE_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("SCRAPE_PAGE_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PageDelayMS = n
		}
	}
	if v := os.Getenv("USE_BROWSER"); v != "" {
		c.UseBrowser = v == "1" || v == "true"
	}
}

// ApplyDefaults fills remaining zero fields with the package defaults.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.PageDelayMS == 0 {
		c.PageDelayMS = DefaultPageDelayMS
	}
	if c.EnrichLimit == 0 {
		c.EnrichLimit = DefaultEnrichLimit
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.PageDelayMS < 0 {
		return fmt.Errorf("config error: 'page_delay_ms' must be non-negative")
	}
	if c.EnrichLimit < 0 {
		return fmt.Errorf("config error: 'enrich_limit' must be non-negative")
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("config error: 'redis_db' must be non-negative")
	}
	return nil
}
