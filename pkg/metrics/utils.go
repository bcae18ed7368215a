package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/objectstore/pkg/observability"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

var _ observability.Observer = (*Metrics)(nil)

// ObserveOperation records one finished storage operation.
func (m *Metrics) ObserveOperation(op observability.OperationContext) {
	status := statusSuccess
	if op.Error != nil {
		status = statusError
	}

	m.operationsTotal.WithLabelValues(op.Component, op.Operation, status).Inc()
	m.operationDuration.WithLabelValues(op.Component, op.Operation).Observe(op.Duration.Seconds())

	// Abort and cleanup forget registered uploads whatever the remote outcome.
	switch op.Operation {
	case "abortMultipart":
		if registered, _ := op.Metadata["registered"].(bool); registered {
			m.uploadsInFlight.WithLabelValues(op.Component).Dec()
		}
	case "cleanupIncompleteUploads":
		if released, _ := op.Metadata["released"].(int); released > 0 {
			m.uploadsInFlight.WithLabelValues(op.Component).Sub(float64(released))
		}
	}

	if op.Error != nil {
		return
	}

	if op.Size > 0 {
		m.bytesTotal.WithLabelValues(op.Component, op.Operation).Add(float64(op.Size))
	}

	switch op.Operation {
	case "beginMultipart":
		m.uploadsInFlight.WithLabelValues(op.Component).Inc()
	case "completeMultipart":
		m.uploadsInFlight.WithLabelValues(op.Component).Dec()
	}
}

// CreateCounter registers an application counter on the same registry.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec("", name, help, labels)
	m.Registry.MustRegister(counter)
	return counter
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}

func createGaugeVec(namespace, name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}
