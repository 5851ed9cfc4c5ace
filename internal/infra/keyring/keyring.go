// Package keyring loads the TLS trust material used by gateway connections.
//
// A keyring is a PKCS#12 file (.p12, .pfx), a PEM bundle, or a directory of
// PEM files. Certificates become trusted roots; a private key, when present,
// is paired with its certificate and offered as the client certificate.
package keyring

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pkcs12"
)

var (
	// ErrNoCertsFound is returned when a keyring holds no certificates.
	ErrNoCertsFound = errors.New("keyring: no certificates found")

	// ErrNoKeyPair is returned when a server configuration is requested
	// from a keyring without a certificate and private key.
	ErrNoKeyPair = errors.New("keyring: no certificate with private key")
)

// Keyring holds trusted roots and an optional certificate chain with key.
type Keyring struct {
	roots *x509.CertPool
	certs []tls.Certificate
}

// New creates an empty keyring without system roots.
func New() *Keyring {
	return &Keyring{roots: x509.NewCertPool()}
}

// Load reads the keyring at path. password unlocks PKCS#12 files and is
// ignored for PEM.
func Load(path, password string) (*Keyring, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("keyring: stat %s: %w", path, err)
	}

	k := New()
	if info.IsDir() {
		if err := k.AddCertDir(path); err != nil {
			return nil, err
		}
		return k, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".p12", ".pfx":
		err = k.AddPKCS12File(path, password)
	default:
		err = k.AddPEMFile(path)
	}
	if err != nil {
		return nil, err
	}
	return k, nil
}

// AddPKCS12File adds the contents of a PKCS#12 file.
func (k *Keyring) AddPKCS12File(path, password string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("keyring: read %s: %w", path, err)
	}
	return k.AddPKCS12(data, password)
}

// AddPKCS12 adds the certificates and key of PKCS#12 data.
func (k *Keyring) AddPKCS12(data []byte, password string) error {
	blocks, err := pkcs12.ToPEM(data, password)
	if err != nil {
		return fmt.Errorf("keyring: decode pkcs12: %w", err)
	}

	var pemData []byte
	for _, b := range blocks {
		// Bag attributes are carried as PEM headers; they are not needed.
		pemData = append(pemData, pem.EncodeToMemory(&pem.Block{Type: b.Type, Bytes: b.Bytes})...)
	}
	return k.AddPEM(pemData)
}

// AddPEMFile adds the contents of a PEM file.
func (k *Keyring) AddPEMFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("keyring: read %s: %w", path, err)
	}
	return k.AddPEM(data)
}

// AddPEM adds PEM-encoded certificates and, if present, a private key.
// Every certificate is trusted as a root. The first certificate matching
// the key becomes the leaf of the keyring's certificate chain.
func (k *Keyring) AddPEM(data []byte) error {
	var (
		certs []*pem.Block
		key   *pem.Block
	)

	for len(data) > 0 {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}

		switch {
		case block.Type == "CERTIFICATE":
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return fmt.Errorf("keyring: parse certificate: %w", err)
			}
			k.roots.AddCert(cert)
			certs = append(certs, block)
		case block.Type == "PRIVATE KEY" || strings.HasSuffix(block.Type, " PRIVATE KEY"):
			if key == nil {
				key = block
			}
		}
	}

	if len(certs) == 0 {
		return ErrNoCertsFound
	}
	if key == nil {
		return nil
	}

	pair, err := pairKey(certs, key)
	if err != nil {
		return err
	}
	k.certs = append(k.certs, pair)
	return nil
}

// pairKey finds the certificate matching key and builds a chain with the
// leaf first.
func pairKey(certs []*pem.Block, key *pem.Block) (tls.Certificate, error) {
	keyPEM := pem.EncodeToMemory(key)

	for i, leaf := range certs {
		pair, err := tls.X509KeyPair(pem.EncodeToMemory(leaf), keyPEM)
		if err != nil {
			continue
		}
		for j, c := range certs {
			if j != i {
				pair.Certificate = append(pair.Certificate, c.Bytes)
			}
		}
		return pair, nil
	}
	return tls.Certificate{}, errors.New("keyring: private key does not match any certificate")
}

// AddCertDir adds all PEM files from a directory.
// Files must have .pem, .crt, or .cer extension. Unreadable files are skipped.
func (k *Keyring) AddCertDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("keyring: read dir %s: %w", dir, err)
	}

	var added int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pem", ".crt", ".cer":
			if err := k.AddPEMFile(filepath.Join(dir, entry.Name())); err != nil {
				continue
			}
			added++
		}
	}

	if added == 0 {
		return ErrNoCertsFound
	}
	return nil
}

// AddCert adds a trusted root directly.
func (k *Keyring) AddCert(cert *x509.Certificate) {
	k.roots.AddCert(cert)
}

// Roots returns the trusted root pool.
func (k *Keyring) Roots() *x509.CertPool {
	return k.roots
}

// Certificates returns the certificate chains with private keys.
func (k *Keyring) Certificates() []tls.Certificate {
	return k.certs
}

// ClientConfig creates a client TLS config trusting the keyring roots and
// presenting its certificate, if any. cipherSuites restricts the suites by
// name; see ParseCipherSuites.
func (k *Keyring) ClientConfig(serverName string, cipherSuites []string) (*tls.Config, error) {
	cfg := &tls.Config{
		RootCAs:      k.roots,
		Certificates: k.certs,
		ServerName:   serverName,
		MinVersion:   tls.VersionTLS12,
	}
	if err := applyCipherSuites(cfg, cipherSuites); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ServerConfig creates a server TLS config presenting the keyring's
// certificate. With requireClientCert set, clients must present a
// certificate issued by one of the keyring roots.
func (k *Keyring) ServerConfig(requireClientCert bool, cipherSuites []string) (*tls.Config, error) {
	if len(k.certs) == 0 {
		return nil, ErrNoKeyPair
	}

	cfg := &tls.Config{
		Certificates: k.certs,
		MinVersion:   tls.VersionTLS12,
	}
	if requireClientCert {
		cfg.ClientCAs = k.roots
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	if err := applyCipherSuites(cfg, cipherSuites); err != nil {
		return nil, err
	}
	return cfg, nil
}
