// Package config provides the ecigate-server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation (addresses, keyring, users, journal directory)
//   - sanitize.go: masks passwords before the config is logged
//
// Configuration is loaded via internal/infra/confloader from a YAML file,
// ECIGATE_ environment variables and flags.
package config
