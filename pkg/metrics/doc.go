// Package metrics exposes Prometheus metrics for the object store clients.
//
// *Metrics implements observability.Observer and records, per component and
// operation:
//
//	<namespace>_operations_total{status="success"|"error"}
//	<namespace>_operation_duration_seconds
//	<namespace>_bytes_total
//	<namespace>_multipart_uploads_in_flight
//
// With Config.Enabled the fx lifecycle serves the registry on Config.Address
// under /metrics.
package metrics
