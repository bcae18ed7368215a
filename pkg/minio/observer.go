package minio

import (
	"context"
	"time"

	"github.com/Aleph-Alpha/objectstore/pkg/observability"
)

// observeOperation notifies the observer, if any.
// resource is the bucket, subResource the object key.
func (m *MinioClient) observeOperation(ctx context.Context, operation, resource, subResource string, start time.Time, err error, size int64, metadata map[string]interface{}) {
	if m == nil || m.observer == nil {
		return
	}

	if resource == "" {
		resource = m.cfg.Store.DefaultBucket
	}

	m.observer.ObserveOperation(observability.OperationContext{
		Context:     ctx,
		Component:   component,
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Start:       start,
		Duration:    time.Since(start),
		Error:       err,
		Size:        size,
		Metadata:    metadata,
	})
}
