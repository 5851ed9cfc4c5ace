// Package metric provides Prometheus metrics for ECIGate.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Registry of ECIGate metrics and the HTTP handler
//   - collector.go: Build info collector
//
// Metrics include:
//
//   - Client request outcomes, latency and in-flight gauge
//   - Worker pool size and task counters
//   - Daemon flow results and connection gauge
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
