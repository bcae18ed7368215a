// Package observability defines the hook storage clients use to report finished
// operations. Metrics and tracing backends implement Observer; clients never
// import them directly.
package observability

import (
	"context"
	"time"
)

// OperationContext describes one finished storage operation.
type OperationContext struct {
	// Context is the caller's context for the operation. Tracing parents spans on it.
	Context context.Context

	// Component is the reporting client, e.g. "minio" or "s3".
	Component string

	// Operation is the client operation, e.g. "put" or "uploadPart".
	Operation string

	// Resource is the bucket.
	Resource string

	// SubResource is the object key, if any.
	SubResource string

	// Start is when the operation began. Zero means Duration before the call.
	Start time.Time

	// Duration is how long the operation took.
	Duration time.Duration

	// Error is the returned error, nil on success.
	Error error

	// Size is the number of payload bytes moved, 0 when not applicable.
	Size int64

	// Metadata carries operation specific fields such as the upload id or part number.
	Metadata map[string]interface{}
}

// StartTime returns Start, or derives it from Duration when Start is unset.
func (o OperationContext) StartTime() time.Time {
	if !o.Start.IsZero() {
		return o.Start
	}
	return time.Now().Add(-o.Duration)
}

// Observer receives an OperationContext after every storage operation.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx OperationContext)

func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}

type multiObserver []Observer

func (m multiObserver) ObserveOperation(ctx OperationContext) {
	for _, o := range m {
		o.ObserveOperation(ctx)
	}
}

// Compose fans out to every non-nil observer. It returns nil when none are given,
// so callers can keep their nil checks.
func Compose(observers ...Observer) Observer {
	var out multiObserver
	for _, o := range observers {
		if o == nil {
			continue
		}
		if nested, ok := o.(multiObserver); ok {
			out = append(out, nested...)
			continue
		}
		out = append(out, o)
	}

	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}
