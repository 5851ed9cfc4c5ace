package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/ecigate-go/internal/infra/confloader"
)

const masked = "******"

// DefaultConfigPath returns ~/.ecigate/cli.yaml.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".ecigate", "cli.yaml")
}

// Load reads the configuration at path over the defaults, then applies
// ECIGATE_* environment variables. A missing file is not an error.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	var opts []confloader.Option
	if _, err := os.Stat(path); err == nil {
		opts = append(opts, confloader.WithConfigFile(path))
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	cfg := Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, readable by the owner only.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Merge applies flag values, keyed by dotted config path such as
// "gateway.host", on top of cfg.
func Merge(cfg *CLIConfig, flags map[string]any) error {
	if len(flags) == 0 {
		return nil
	}
	l := confloader.NewLoader()
	if err := l.LoadMap(flags); err != nil {
		return err
	}
	if err := l.Unmarshal(cfg); err != nil {
		return fmt.Errorf("apply flags: %w", err)
	}
	return nil
}

// Validate checks the connection settings and the output format.
func (c *CLIConfig) Validate() error {
	switch c.Output {
	case "table", "json", "yaml", "hex", "raw":
	default:
		return fmt.Errorf("output %q must be one of table, json, yaml, hex, raw", c.Output)
	}
	conn := c.ToConnectionConfig()
	return conn.Validate()
}

// Sanitize returns a copy of c with secrets masked, for display.
func Sanitize(c *CLIConfig) *CLIConfig {
	out := *c
	out.Gateway.SecureSocket.CipherSuites = append([]string(nil), c.Gateway.SecureSocket.CipherSuites...)
	if out.Gateway.Auth.Password != "" {
		out.Gateway.Auth.Password = masked
	}
	if out.Gateway.SecureSocket.KeyringPassword != "" {
		out.Gateway.SecureSocket.KeyringPassword = masked
	}
	return &out
}
