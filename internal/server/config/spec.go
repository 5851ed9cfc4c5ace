package config

import "time"

// ServerConfig is the root configuration for ecigate-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Gateway GatewaySection `koanf:"gateway"`
	Limits  LimitsSection  `koanf:"limits"`
	Journal JournalSection `koanf:"journal"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the listeners.
type ServerSection struct {
	// Addr is the wire protocol listen address.
	Addr string `koanf:"addr"`
	// MetricsAddr serves /metrics and the admin API. Empty disables the
	// HTTP listener.
	MetricsAddr string `koanf:"metrics_addr"`
	// AdminAllowList restricts /admin/v1 to these IPs or CIDRs. Empty
	// allows every client.
	AdminAllowList []string      `koanf:"admin_allow_list"`
	MaxConnections int           `koanf:"max_connections"`
	IdleTimeout    time.Duration `koanf:"idle_timeout"`
	TLS            TLSSection    `koanf:"tls"`
}

// TLSSection configures the secure listener.
type TLSSection struct {
	Enabled bool `koanf:"enabled"`
	// Keyring holds the server certificate and key: a PKCS#12 file,
	// a PEM bundle or a directory of PEM files.
	Keyring         string `koanf:"keyring"`
	KeyringPassword string `koanf:"keyring_password"`
	// ClientAuth requires clients to present a certificate signed by a
	// root in the keyring.
	ClientAuth   bool     `koanf:"client_auth"`
	CipherSuites []string `koanf:"cipher_suites"`
	// Watch reloads the keyring when it changes on disk.
	Watch bool `koanf:"watch"`
}

// GatewaySection describes the CICS systems the daemon fronts.
type GatewaySection struct {
	// Name is reported to clients in the handshake.
	Name string `koanf:"name"`
	// Servers lists the CICS server names accepted in flow requests.
	Servers []string `koanf:"servers"`
	// Users maps user IDs to passwords.
	Users map[string]string `koanf:"users"`
	// Programs restricts the installed programs. Empty installs all.
	Programs []string `koanf:"programs"`
}

// LimitsSection configures request limits.
type LimitsSection struct {
	// RequestsPerSecond is the per-user rate. Zero disables limiting.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
	// DefaultTimeout applies when a request carries no ECI timeout.
	// Zero means no limit.
	DefaultTimeout time.Duration `koanf:"default_timeout"`
}

// JournalSection configures the request journal.
type JournalSection struct {
	Enabled   bool          `koanf:"enabled"`
	Dir       string        `koanf:"dir"`
	Retention time.Duration `koanf:"retention"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
