package keyring

import (
	"crypto/tls"
	"fmt"
	"strings"
)

// ParseCipherSuites resolves IANA cipher suite names, such as
// TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256, to crypto/tls IDs. Insecure suites
// are accepted when named explicitly. hasTLS13 reports whether any named
// suite is a TLS 1.3 suite.
func ParseCipherSuites(names []string) (ids []uint16, hasTLS13 bool, err error) {
	known := make(map[string]*tls.CipherSuite)
	for _, s := range tls.CipherSuites() {
		known[s.Name] = s
	}
	for _, s := range tls.InsecureCipherSuites() {
		known[s.Name] = s
	}

	for _, name := range names {
		s, ok := known[strings.TrimSpace(name)]
		if !ok {
			return nil, false, fmt.Errorf("keyring: unknown cipher suite %q", name)
		}
		if supportsOnlyTLS13(s) {
			hasTLS13 = true
			continue
		}
		ids = append(ids, s.ID)
	}
	return ids, hasTLS13, nil
}

func supportsOnlyTLS13(s *tls.CipherSuite) bool {
	return len(s.SupportedVersions) == 1 && s.SupportedVersions[0] == tls.VersionTLS13
}

// applyCipherSuites restricts cfg to the named suites. TLS 1.3 suites are
// not configurable in crypto/tls, so a list without any of them caps the
// connection at TLS 1.2 to keep the restriction effective.
func applyCipherSuites(cfg *tls.Config, names []string) error {
	if len(names) == 0 {
		return nil
	}

	ids, hasTLS13, err := ParseCipherSuites(names)
	if err != nil {
		return err
	}
	cfg.CipherSuites = ids
	switch {
	case !hasTLS13:
		cfg.MaxVersion = tls.VersionTLS12
	case len(ids) == 0:
		cfg.MinVersion = tls.VersionTLS13
	}
	return nil
}
