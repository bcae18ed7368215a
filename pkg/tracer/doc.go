// Package tracer reports storage operations as OpenTelemetry spans.
//
// *Tracer implements observability.Observer. Each finished operation becomes a
// client span "<component>.<operation>" whose start and end timestamps match
// the operation, with the bucket, key, size and operation metadata as
// attributes and an error status on failure.
//
// Spans are exported over OTLP/HTTP when Config.EnableExport is set; the
// standard OTEL_EXPORTER_OTLP_* environment variables apply when no endpoint
// is configured.
package tracer
