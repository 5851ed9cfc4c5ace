// Package httpserver provides the HTTP listener of the ECIGate daemon.
//
// It serves, on the metrics address:
//
//   - Health endpoints: /health, /ready
//   - Prometheus metrics: /metrics
//   - Admin endpoints: /admin/v1/status, /admin/v1/journal
//
// Admin endpoints can be restricted to an IP/CIDR allowlist. Every request
// gets an X-Request-ID and is audit logged.
package httpserver
