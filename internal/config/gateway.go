package config

import (
	"os"
	"time"
)

// GatewayConfig defines how the bot talks to the messaging gateway.
type GatewayConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`     // API key (can be set directly or via env var)
	APIKeyEnv  string        `mapstructure:"api_key_env"` // Environment variable name for API key
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
	// WebhookSecret, when set, must be echoed in the X-Webhook-Secret header of inbound events.
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// ResolveEnvVars resolves environment variable references in the configuration.
// A direct APIKey takes precedence over APIKeyEnv.
func (c *GatewayConfig) ResolveEnvVars() {
	if c.APIKeyEnv != "" && c.APIKey == "" {
		if val := os.Getenv(c.APIKeyEnv); val != "" {
			c.APIKey = val
		}
	}
}
