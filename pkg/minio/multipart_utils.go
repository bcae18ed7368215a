package minio

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
)

// BeginMultipart starts a native multipart upload and registers its id.
func (m *MinioClient) BeginMultipart(ctx context.Context, bucket, key string) (string, error) {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return "", err
	}
	start := time.Now()
	m.logger.Debug("Starting multipart upload", nil, map[string]interface{}{"bucket": bucket, "key": key})

	uploadID, err := m.core.NewMultipartUpload(ctx, bucket, key, minio.PutObjectOptions{
		ContentType: objectstore.DefaultContentType,
	})
	if err != nil {
		return "", m.done(ctx, "beginMultipart", bucket, key, start, m.wrap("beginMultipart", bucket, key, err), 0, nil)
	}

	if err := m.registry.Register(uploadID); err != nil {
		// The remote upload is unusable without a local entry.
		if abortErr := m.core.AbortMultipartUpload(ctx, bucket, key, uploadID); abortErr != nil {
			m.logger.Warn("Failed to abort unregistered multipart upload", abortErr, map[string]interface{}{
				"bucket": bucket, "key": key, "uploadId": uploadID,
			})
		}
		return "", m.done(ctx, "beginMultipart", bucket, key, start, err, 0, nil)
	}

	return uploadID, m.done(ctx, "beginMultipart", bucket, key, start, nil, 0, map[string]interface{}{"uploadId": uploadID})
}

// UploadPart sends the next part of uploadID and returns the manifest recorded so far.
// Calls for the same id are serialised; the part number is the manifest length plus one.
// A negative size stages the payload in memory first.
func (m *MinioClient) UploadPart(ctx context.Context, bucket, key, uploadID string, reader io.Reader, size int64) ([]objectstore.Part, error) {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return nil, err
	}
	start := time.Now()

	var partNumber int32
	parts, err := m.registry.NextPart(uploadID, func(n int32) (objectstore.Part, error) {
		partNumber = n
		m.logger.Debug("Uploading part", nil, map[string]interface{}{
			"bucket": bucket, "key": key, "uploadId": uploadID, "partNumber": n,
		})

		body, partSize := reader, size
		if size < 0 {
			buf, err := m.bufferPool.Stage(reader, -1)
			if err != nil {
				return objectstore.Part{}, m.wrap("uploadPart", bucket, key, err)
			}
			defer m.bufferPool.Put(buf)
			body, partSize = buf, int64(buf.Len())
		}

		part, err := m.core.PutObjectPart(ctx, bucket, key, uploadID, int(n), body, partSize, minio.PutObjectPartOptions{})
		if err != nil {
			return objectstore.Part{}, m.wrap("uploadPart", bucket, key, err)
		}
		return objectstore.Part{ETag: part.ETag, Size: part.Size}, nil
	})

	metadata := map[string]interface{}{"uploadId": uploadID}
	if partNumber > 0 {
		metadata["partNumber"] = partNumber
	}
	if err != nil {
		return nil, m.done(ctx, "uploadPart", bucket, key, start, err, 0, metadata)
	}
	return parts, m.done(ctx, "uploadPart", bucket, key, start, nil, parts[len(parts)-1].Size, metadata)
}

// CompleteMultipart submits the recorded manifest in part order. The id is
// forgotten only when the store accepts the manifest, so a failed completion
// can be retried or aborted.
func (m *MinioClient) CompleteMultipart(ctx context.Context, bucket, key, uploadID string) (objectstore.UploadInfo, error) {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return objectstore.UploadInfo{}, err
	}
	start := time.Now()
	m.logger.Debug("Completing multipart upload", nil, map[string]interface{}{"bucket": bucket, "key": key, "uploadId": uploadID})

	var result objectstore.UploadInfo
	var partCount int
	err := m.registry.Complete(uploadID, func(parts []objectstore.Part) error {
		partCount = len(parts)
		completeParts := make([]minio.CompletePart, len(parts))
		var total int64
		for i, p := range parts {
			completeParts[i] = minio.CompletePart{PartNumber: int(p.Number), ETag: p.ETag}
			total += p.Size
		}

		info, err := m.core.CompleteMultipartUpload(ctx, bucket, key, uploadID, completeParts, minio.PutObjectOptions{})
		if err != nil {
			return m.wrap("completeMultipart", bucket, key, err)
		}
		result = toUploadInfo(bucket, key, info)
		result.Size = total
		return nil
	})

	metadata := map[string]interface{}{"uploadId": uploadID, "parts": partCount}
	if err != nil {
		return objectstore.UploadInfo{}, m.done(ctx, "completeMultipart", bucket, key, start, err, 0, metadata)
	}
	return result, m.done(ctx, "completeMultipart", bucket, key, start, nil, result.Size, metadata)
}

// AbortMultipart forgets uploadID and asks the store to discard its parts.
// The local entry is dropped even when the remote call fails, and ids this
// process never saw are still sent to the store, so orphans can be cleaned up.
func (m *MinioClient) AbortMultipart(ctx context.Context, bucket, key, uploadID string) error {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return err
	}
	if uploadID == "" {
		return fmt.Errorf("%w: upload id is empty", objectstore.ErrInvalidArgument)
	}
	start := time.Now()
	m.logger.Debug("Aborting multipart upload", nil, map[string]interface{}{"bucket": bucket, "key": key, "uploadId": uploadID})

	registered := m.registry.Remove(uploadID)

	err := m.core.AbortMultipartUpload(ctx, bucket, key, uploadID)
	metadata := map[string]interface{}{"uploadId": uploadID, "registered": registered}
	return m.done(ctx, "abortMultipart", bucket, key, start, m.wrap("abortMultipart", bucket, key, err), 0, metadata)
}

// CleanupIncompleteUploads aborts multipart uploads under prefix that were
// started more than olderThan ago, including ones begun by other processes.
// It returns how many uploads were aborted. Individual abort failures are
// logged and skipped.
func (m *MinioClient) CleanupIncompleteUploads(ctx context.Context, bucket, prefix string, olderThan time.Duration) (int, error) {
	if err := objectstore.ValidateBucket(bucket); err != nil {
		return 0, err
	}
	start := time.Now()
	cutoff := start.Add(-olderThan)

	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stale []minio.ObjectMultipartInfo
	for upload := range m.api.ListIncompleteUploads(listCtx, bucket, prefix, true) {
		if upload.Err != nil {
			return 0, m.done(ctx, "cleanupIncompleteUploads", bucket, prefix, start, m.wrap("cleanupIncompleteUploads", bucket, prefix, upload.Err), 0, nil)
		}
		if upload.Initiated.Before(cutoff) {
			stale = append(stale, upload)
		}
	}

	aborted, released := 0, 0
	for _, upload := range stale {
		if m.registry.Remove(upload.UploadID) {
			released++
		}
		if err := m.core.AbortMultipartUpload(ctx, bucket, upload.Key, upload.UploadID); err != nil {
			m.logger.Warn("Failed to abort incomplete upload during cleanup", err, map[string]interface{}{
				"bucket": bucket, "key": upload.Key, "uploadId": upload.UploadID,
			})
			continue
		}
		aborted++
		m.logger.Info("Cleaned up incomplete upload", nil, map[string]interface{}{
			"bucket":      bucket,
			"key":         upload.Key,
			"uploadId":    upload.UploadID,
			"initiatedOn": upload.Initiated,
		})
	}

	return aborted, m.done(ctx, "cleanupIncompleteUploads", bucket, prefix, start, nil, 0, map[string]interface{}{"aborted": aborted, "released": released})
}
