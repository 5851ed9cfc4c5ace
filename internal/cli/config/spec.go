package config

import (
	"github.com/yndnr/ecigate-go/internal/core/domain"
)

// Defaults.
const (
	DefaultHost           = "localhost"
	DefaultPort           = 2006
	DefaultConnectTimeout = 30
	DefaultOutput         = "table"
	DefaultLogLevel       = "error"
	DefaultLogFormat      = "text"
)

// CLIConfig is the configuration of ecigate-cli.
type CLIConfig struct {
	Gateway GatewayConfig `koanf:"gateway" json:"gateway" yaml:"gateway"`
	Output  string        `koanf:"output" json:"output" yaml:"output"`
	Log     LogConfig     `koanf:"log" json:"log" yaml:"log"`
}

// GatewayConfig describes the gateway connection.
type GatewayConfig struct {
	Host                 string             `koanf:"host" json:"host" yaml:"host"`
	Port                 int                `koanf:"port" json:"port" yaml:"port"`
	CICSServer           string             `koanf:"cics_server" json:"cics_server" yaml:"cics_server"`
	SocketConnectTimeout int                `koanf:"socket_connect_timeout" json:"socket_connect_timeout" yaml:"socket_connect_timeout"`
	Auth                 AuthConfig         `koanf:"auth" json:"auth" yaml:"auth"`
	SecureSocket         SecureSocketConfig `koanf:"secure_socket" json:"secure_socket,omitempty" yaml:"secure_socket,omitempty"`
}

// AuthConfig holds the CICS credentials.
type AuthConfig struct {
	UserID   string `koanf:"user_id" json:"user_id" yaml:"user_id"`
	Password string `koanf:"password" json:"password" yaml:"password"`
}

// SecureSocketConfig enables TLS when Keyring is set.
type SecureSocketConfig struct {
	Keyring         string   `koanf:"ssl_keyring" json:"ssl_keyring,omitempty" yaml:"ssl_keyring,omitempty"`
	KeyringPassword string   `koanf:"ssl_keyring_password" json:"ssl_keyring_password,omitempty" yaml:"ssl_keyring_password,omitempty"`
	CipherSuites    []string `koanf:"ssl_cipher_suites" json:"ssl_cipher_suites,omitempty" yaml:"ssl_cipher_suites,omitempty"`
}

// LogConfig configures diagnostics written to stderr.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Gateway: GatewayConfig{
			Host:                 DefaultHost,
			Port:                 DefaultPort,
			SocketConnectTimeout: DefaultConnectTimeout,
		},
		Output: DefaultOutput,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// ToConnectionConfig converts the gateway section for the client library.
func (c *CLIConfig) ToConnectionConfig() domain.ConnectionConfig {
	g := c.Gateway
	cfg := domain.ConnectionConfig{
		Host:           g.Host,
		Port:           g.Port,
		ServerName:     g.CICSServer,
		ConnectTimeout: g.SocketConnectTimeout,
		Credentials: domain.Credentials{
			UserID:   g.Auth.UserID,
			Password: g.Auth.Password,
		},
	}
	if g.SecureSocket.Keyring != "" {
		cfg.TLS = &domain.TLSConfig{
			Keyring:         g.SecureSocket.Keyring,
			KeyringPassword: g.SecureSocket.KeyringPassword,
			CipherSuites:    append([]string(nil), g.SecureSocket.CipherSuites...),
		}
	}
	return cfg
}
