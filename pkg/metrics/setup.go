package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the registry, the storage collectors and the exposition server.
// It implements observability.Observer.
type Metrics struct {
	Server   *http.Server
	Registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTotal        *prometheus.CounterVec
	uploadsInFlight   *prometheus.GaugeVec
}

// NewMetrics creates the registry and registers the storage collectors on it.
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	// Every series carries the service label.
	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{Registry: registry}

	m.operationsTotal = createCounterVec(cfg.Namespace, "operations_total",
		"Storage operations by outcome", []string{"component", "operation", "status"})
	m.operationDuration = createHistogramVec(cfg.Namespace, "operation_duration_seconds",
		"Latency of storage operations", []string{"component", "operation"}, prometheus.DefBuckets)
	m.bytesTotal = createCounterVec(cfg.Namespace, "bytes_total",
		"Payload bytes moved by successful operations", []string{"component", "operation"})
	m.uploadsInFlight = createGaugeVec(cfg.Namespace, "multipart_uploads_in_flight",
		"Native multipart uploads begun and not yet completed or aborted", []string{"component"})

	wrappedRegistry.MustRegister(
		m.operationsTotal,
		m.operationDuration,
		m.bytesTotal,
		m.uploadsInFlight,
	)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	address := cfg.Address
	if address == "" {
		address = DefaultMetricsAddress
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	m.Server = &http.Server{
		Addr:    address,
		Handler: mux,
	}

	return m
}
