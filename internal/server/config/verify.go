package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/yndnr/ecigate-go/internal/infra/keyring"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyGateway(&cfg.Gateway); err != nil {
		return err
	}
	if err := verifyLimits(&cfg.Limits); err != nil {
		return err
	}
	if err := verifyJournal(&cfg.Journal); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Addr == "" {
		return errors.New("server.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("server.addr: %w", err)
	}
	if cfg.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.MetricsAddr); err != nil {
			return fmt.Errorf("server.metrics_addr: %w", err)
		}
		if cfg.MetricsAddr == cfg.Addr {
			return errors.New("server.metrics_addr must differ from server.addr")
		}
	}
	for _, entry := range cfg.AdminAllowList {
		if strings.Contains(entry, "/") {
			if _, _, err := net.ParseCIDR(entry); err != nil {
				return fmt.Errorf("server.admin_allow_list: %w", err)
			}
		} else if net.ParseIP(entry) == nil {
			return fmt.Errorf("server.admin_allow_list: invalid IP %q", entry)
		}
	}
	if cfg.MaxConnections < 0 {
		return errors.New("server.max_connections must not be negative")
	}
	if cfg.IdleTimeout < 0 {
		return errors.New("server.idle_timeout must not be negative")
	}

	if !cfg.TLS.Enabled {
		return nil
	}
	if cfg.TLS.Keyring == "" {
		return errors.New("server.tls.keyring is required when tls is enabled")
	}
	if _, err := os.Stat(cfg.TLS.Keyring); err != nil {
		return fmt.Errorf("server.tls.keyring: %w", err)
	}
	if _, _, err := keyring.ParseCipherSuites(cfg.TLS.CipherSuites); err != nil {
		return fmt.Errorf("server.tls.cipher_suites: %w", err)
	}
	return nil
}

func verifyGateway(cfg *GatewaySection) error {
	if len(cfg.Servers) == 0 {
		return errors.New("gateway.servers must list at least one CICS server")
	}
	for _, s := range cfg.Servers {
		if strings.TrimSpace(s) == "" {
			return errors.New("gateway.servers contains an empty name")
		}
	}
	if len(cfg.Users) == 0 {
		return errors.New("gateway.users must define at least one user")
	}
	for user, password := range cfg.Users {
		if user == "" || password == "" {
			return fmt.Errorf("gateway.users: user %q has an empty id or password", user)
		}
	}
	return nil
}

func verifyLimits(cfg *LimitsSection) error {
	if cfg.RequestsPerSecond < 0 {
		return errors.New("limits.requests_per_second must not be negative")
	}
	if cfg.RequestsPerSecond > 0 && cfg.Burst < 1 {
		return errors.New("limits.burst must be at least 1 when rate limiting is enabled")
	}
	if cfg.DefaultTimeout < 0 {
		return errors.New("limits.default_timeout must not be negative")
	}
	return nil
}

func verifyJournal(cfg *JournalSection) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Dir == "" {
		return errors.New("journal.dir is required when the journal is enabled")
	}
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return errors.New("cannot create journal directory: " + err.Error())
	}
	if cfg.Retention < 0 {
		return errors.New("journal.retention must not be negative")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Format)
	}
	return nil
}
