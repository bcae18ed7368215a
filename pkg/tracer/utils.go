package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	traceapi "go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/objectstore/pkg/observability"
)

var _ observability.Observer = (*Tracer)(nil)

// ObserveOperation emits one client span named "<component>.<operation>",
// back-dated to the operation's start and parented on op.Context.
func (t *Tracer) ObserveOperation(op observability.OperationContext) {
	start := op.StartTime()

	parent := op.Context
	if parent == nil {
		parent = context.Background()
	}

	_, span := t.tracer.Start(parent, op.Component+"."+op.Operation,
		traceapi.WithSpanKind(traceapi.SpanKindClient),
		traceapi.WithTimestamp(start),
	)

	span.SetAttributes(
		attribute.String("storage.system", op.Component),
		attribute.String("storage.bucket", op.Resource),
	)
	if op.SubResource != "" {
		span.SetAttributes(attribute.String("storage.key", op.SubResource))
	}
	if op.Size > 0 {
		span.SetAttributes(attribute.Int64("storage.size", op.Size))
	}
	t.SetAttributes(span, op.Metadata)

	if op.Error != nil {
		t.RecordErrorOnSpan(span, op.Error)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End(traceapi.WithTimestamp(start.Add(op.Duration)))
}

// RecordErrorOnSpan records err as an event and marks the span failed.
func (t *Tracer) RecordErrorOnSpan(span traceapi.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetAttributes converts a loosely typed map to span attributes.
func (t *Tracer) SetAttributes(span traceapi.Span, attrs map[string]interface{}) {
	if len(attrs) == 0 {
		return
	}

	attributes := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			attributes = append(attributes, attribute.String(k, val))
		case int:
			attributes = append(attributes, attribute.Int(k, val))
		case int32:
			attributes = append(attributes, attribute.Int(k, int(val)))
		case int64:
			attributes = append(attributes, attribute.Int64(k, val))
		case float64:
			attributes = append(attributes, attribute.Float64(k, val))
		case bool:
			attributes = append(attributes, attribute.Bool(k, val))
		default:
			attributes = append(attributes, attribute.String(k, fmt.Sprint(val)))
		}
	}
	span.SetAttributes(attributes...)
}
