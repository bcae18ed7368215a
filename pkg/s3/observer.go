package s3

import (
	"context"
	"time"

	"github.com/Aleph-Alpha/objectstore/pkg/observability"
)

func (c *S3Client) observeOperation(ctx context.Context, operation, resource, subResource string, start time.Time, err error, size int64, metadata map[string]interface{}) {
	if c == nil || c.observer == nil {
		return
	}

	c.observer.ObserveOperation(observability.OperationContext{
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
