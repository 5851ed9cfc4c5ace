// Package keyring provides TLS trust material for ECIGate connections.
//
//   - keyring.go: PKCS#12, PEM bundle and PEM directory loading
//   - cipher.go: IANA cipher suite name resolution
//   - watcher.go: Hot reload of a serving certificate
package keyring
