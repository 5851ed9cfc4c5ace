package config

import "strings"

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if sanitized.Server.TLS.KeyringPassword != "" {
		sanitized.Server.TLS.KeyringPassword = maskSecret(sanitized.Server.TLS.KeyringPassword)
	}

	if cfg.Gateway.Users != nil {
		users := make(map[string]string, len(cfg.Gateway.Users))
		for user, password := range cfg.Gateway.Users {
			users[user] = maskSecret(password)
		}
		sanitized.Gateway.Users = users
	}

	return &sanitized
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
