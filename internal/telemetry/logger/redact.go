package logger

import (
	"log/slog"
	"strings"
)

// Sensitive key patterns that should be redacted. keyring_password and
// ssl_keyring_password are covered by "password".
var sensitiveKeyPatterns = []string{
	"password",
	"passwd",
	"secret",
	"private_key",
	"credential",
	"auth",
	"bearer",
}

// pemKeyMarker identifies PEM encoded private keys in values.
const pemKeyMarker = "PRIVATE KEY-----"

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		if IsSensitiveValue(strVal) {
			return slog.String(a.Key, redactedValue)
		}

		// If key name suggests sensitive data and value is non-empty, fully redact
		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	}

	// Handle nested groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// maskValue keeps the first and last keep characters of value.
// Format: first chars + "***" + last chars
func maskValue(value string, keep int) string {
	if len(value) <= keep*2+2 {
		return "***"
	}
	return value[:keep] + "***" + value[len(value)-keep:]
}

// RedactUser masks a CICS user ID for logs.
func RedactUser(user string) string {
	if user == "" {
		return ""
	}
	return maskValue(user, 2)
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue checks if a value appears to be sensitive.
func IsSensitiveValue(value string) bool {
	return strings.Contains(value, pemKeyMarker)
}
