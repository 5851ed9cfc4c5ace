package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Credentials authenticate calls against the CICS server.
type Credentials struct {
	UserID   string
	Password string
}

// Validate checks that both fields are present.
func (c Credentials) Validate() error {
	if c.UserID == "" {
		return errors.New("auth.user_id is required")
	}
	if c.Password == "" {
		return errors.New("auth.password is required")
	}
	return nil
}

// TLSConfig holds the secure socket settings for the gateway connection.
type TLSConfig struct {
	// Keyring identifies the trust material: a PKCS#12 file, a PEM bundle,
	// or a directory of PEM files.
	Keyring string
	// KeyringPassword unlocks a PKCS#12 keyring. Optional.
	KeyringPassword string
	// CipherSuites restricts the negotiated suites by IANA name. Empty means
	// the implementation default set.
	CipherSuites []string
}

// CipherSuiteList returns the cipher suite names joined for transmission,
// or "" when no restriction is configured.
func (t *TLSConfig) CipherSuiteList() string {
	if t == nil || len(t.CipherSuites) == 0 {
		return ""
	}
	return strings.Join(t.CipherSuites, ",")
}

// Validate checks required TLS fields.
func (t *TLSConfig) Validate() error {
	if t.Keyring == "" {
		return errors.New("secure_socket.ssl_keyring is required")
	}
	for _, name := range t.CipherSuites {
		if strings.TrimSpace(name) == "" {
			return errors.New("secure_socket.ssl_cipher_suites contains an empty name")
		}
	}
	return nil
}

// ConnectionConfig holds the parameters of one gateway connection.
//
// A ConnectionConfig is treated as immutable once handed to a client;
// callers receive copies via Clone.
type ConnectionConfig struct {
	Host       string
	Port       int
	ServerName string
	// ConnectTimeout is the dial and handshake timeout in seconds.
	// Zero disables the deadline.
	ConnectTimeout int
	Credentials    Credentials
	TLS            *TLSConfig
}

// Validate checks that the required fields are present and in range.
func (c *ConnectionConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.ServerName == "" {
		return errors.New("cics_server is required")
	}
	if c.ConnectTimeout < 0 {
		return errors.New("socket_connect_timeout must not be negative")
	}
	if err := c.Credentials.Validate(); err != nil {
		return err
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Secure reports whether the connection uses TLS.
func (c *ConnectionConfig) Secure() bool {
	return c.TLS != nil
}

// Clone returns a deep copy of the configuration.
func (c ConnectionConfig) Clone() ConnectionConfig {
	out := c
	if c.TLS != nil {
		tlsCopy := *c.TLS
		if c.TLS.CipherSuites != nil {
			tlsCopy.CipherSuites = append([]string(nil), c.TLS.CipherSuites...)
		}
		out.TLS = &tlsCopy
	}
	return out
}
