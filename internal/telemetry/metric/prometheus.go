// Package metric provides Prometheus metrics for ECIGate.
//
// It exposes request outcomes, latencies, worker pool usage and daemon
// flow counts in Prometheus format.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every ECIGate metric.
const Namespace = "ecigate"

// Outcome label values for client requests.
const (
	OutcomeSuccess         = "success"
	OutcomeEmpty           = "empty"
	OutcomeOperationFailed = "operation_failed"
	OutcomeRemoteRejected  = "remote_rejected"
	OutcomeError           = "error"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Client metrics
	ClientRequests  *prometheus.CounterVec
	ClientDuration  prometheus.Histogram
	ClientInflight  prometheus.Gauge
	ConnectionsOpen prometheus.Gauge

	// Worker pool metrics
	PoolWorkers     prometheus.Gauge
	PoolIdleWorkers prometheus.Gauge
	PoolTasks       prometheus.Counter

	// Daemon metrics
	ServerFlows       *prometheus.CounterVec
	ServerConnections prometheus.Gauge
}

// NewRegistry creates a registry with all ECIGate metrics, the Go runtime
// collector, the process collector and the build info collector registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		ClientRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Program calls completed by the client, by outcome",
		}, []string{"outcome"}),
		ClientDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Time from submission to resolution of a program call",
			Buckets:   prometheus.DefBuckets,
		}),
		ClientInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "client",
			Name:      "requests_inflight",
			Help:      "Program calls submitted but not yet resolved",
		}),
		ConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "client",
			Name:      "connection_open",
			Help:      "Open gateway connections",
		}),
		PoolWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "workpool",
			Name:      "workers",
			Help:      "Live worker goroutines",
		}),
		PoolIdleWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "workpool",
			Name:      "idle_workers",
			Help:      "Worker goroutines waiting for a task",
		}),
		PoolTasks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "workpool",
			Name:      "tasks_total",
			Help:      "Tasks accepted by the worker pool",
		}),
		ServerFlows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "server",
			Name:      "flows_total",
			Help:      "Flow requests handled by the gateway daemon",
		}, []string{"program", "result"}),
		ServerConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "server",
			Name:      "connections",
			Help:      "Client connections currently served",
		}),
	}

	r.reg.MustRegister(
		r.ClientRequests, r.ClientDuration, r.ClientInflight, r.ConnectionsOpen,
		r.PoolWorkers, r.PoolIdleWorkers, r.PoolTasks,
		r.ServerFlows, r.ServerConnections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		NewBuildInfoCollector(),
	)
	return r
}

// Prometheus returns the underlying registry for registering extra
// collectors, such as the journal's badger gauges.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.reg
}

// Gatherer returns the registry as a prometheus.Gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
