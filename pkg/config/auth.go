package config

import (
	"fmt"
	"strings"
)

type AuthConfig struct {
	APIKeys []string `koanf:"api_keys"`
}

// String returns a string representation of the auth configuration with keys masked.
func (c *AuthConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Auth ---\n")
	b.WriteString(fmt.Sprintf("  api_keys: %d configured\n", len(c.APIKeys)))
	return b.String()
}

func (c *AuthConfig) Validate() error {
	if len(c.APIKeys) == 0 {
		return fmt.Errorf("at least one API key must be configured")
	}
	for _, key := range c.APIKeys {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("API keys must not be empty")
		}
	}
	return nil
}
