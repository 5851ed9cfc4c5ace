package keyring

import (
	"crypto/tls"
	"testing"
)

func TestParseCipherSuites(t *testing.T) {
	tests := []struct {
		name      string
		names     []string
		wantIDs   int
		wantTLS13 bool
		wantErr   bool
	}{
		{"empty", nil, 0, false, false},
		{"tls12 suite", []string{"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256"}, 1, false, false},
		{"tls13 suite", []string{"TLS_AES_128_GCM_SHA256"}, 0, true, false},
		{"mixed", []string{"TLS_AES_256_GCM_SHA384", " TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384"}, 1, true, false},
		{"insecure named explicitly", []string{"TLS_RSA_WITH_AES_128_CBC_SHA256"}, 1, false, false},
		{"unknown", []string{"TLS_NOT_A_SUITE"}, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, has13, err := ParseCipherSuites(tt.names)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCipherSuites() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(ids) != tt.wantIDs {
				t.Errorf("len(ids) = %d, want %d", len(ids), tt.wantIDs)
			}
			if has13 != tt.wantTLS13 {
				t.Errorf("hasTLS13 = %v, want %v", has13, tt.wantTLS13)
			}
		})
	}
}

func TestClientConfig_VersionCaps(t *testing.T) {
	k := New()

	cfg, err := k.ClientConfig("gw", nil)
	if err != nil {
		t.Fatalf("ClientConfig() error = %v", err)
	}
	if cfg.MaxVersion != 0 || cfg.CipherSuites != nil {
		t.Errorf("default config restricted: max=%x suites=%v", cfg.MaxVersion, cfg.CipherSuites)
	}
	if cfg.ServerName != "gw" {
		t.Errorf("ServerName = %q", cfg.ServerName)
	}

	cfg, _ = k.ClientConfig("gw", []string{"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256"})
	if cfg.MaxVersion != tls.VersionTLS12 {
		t.Errorf("MaxVersion = %x, want TLS 1.2", cfg.MaxVersion)
	}

	cfg, _ = k.ClientConfig("gw", []string{"TLS_AES_128_GCM_SHA256"})
	if cfg.MinVersion != tls.VersionTLS13 || cfg.MaxVersion != 0 {
		t.Errorf("versions = %x..%x, want TLS 1.3 only", cfg.MinVersion, cfg.MaxVersion)
	}

	if _, err := k.ClientConfig("gw", []string{"BOGUS"}); err == nil {
		t.Error("ClientConfig() expected error for unknown suite")
	}
}
