package config

import (
	"fmt"
	"os"
	"time"
)

// ProviderConfig configures the stock media provider used by the search core.
type ProviderConfig struct {
	Name        string        `mapstructure:"name"`        // Provider type: "pexels", "staging"
	APIKey      string        `mapstructure:"api_key"`     // API key (can be set directly or via env var)
	APIKeyEnv   string        `mapstructure:"api_key_env"` // Environment variable name for API key
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"` // Per-request timeout
	PerPage     int           `mapstructure:"per_page_max"`
	StagingPath string        `mapstructure:"staging_path"` // staging provider: directory holding catalogs
	Catalog     string        `mapstructure:"catalog"`      // staging provider: catalog directory name
}

// ResolveEnvVars loads the API key from APIKeyEnv when no direct value is set.
func (c *ProviderConfig) ResolveEnvVars() {
	if c.APIKeyEnv != "" && c.APIKey == "" {
		if val := os.Getenv(c.APIKeyEnv); val != "" {
			c.APIKey = val
		}
	}
}

// Validate checks that the provider configuration is usable.
func (c *ProviderConfig) Validate() error {
	switch c.Name {
	case "pexels":
	case "staging":
		if c.StagingPath == "" || c.Catalog == "" {
			return fmt.Errorf("provider %q: staging_path and catalog are required", c.Name)
		}
		return nil
	default:
		return fmt.Errorf("provider: unknown provider %q", c.Name)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("provider %q: base_url is required", c.Name)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("provider %q: timeout must be positive", c.Name)
	}
	if c.PerPage <= 0 {
		return fmt.Errorf("provider %q: per_page_max must be positive", c.Name)
	}
	return nil
}

// ValidateWithAPIKey validates the configuration including the API key requirement.
func (c *ProviderConfig) ValidateWithAPIKey() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Name == "pexels" && c.APIKey == "" {
		return fmt.Errorf("provider %q: api_key is required (set directly or via %s)", c.Name, c.APIKeyEnv)
	}
	return nil
}
