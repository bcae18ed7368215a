package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
)

// BeginMultipart starts a native multipart upload and registers its id.
func (c *S3Client) BeginMultipart(ctx context.Context, bucket, key string) (string, error) {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return "", err
	}
	start := time.Now()
	c.logger.Debug("Starting multipart upload", nil, map[string]interface{}{"bucket": bucket, "key": key})

	out, err := c.api.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(objectstore.DefaultContentType),
	})
	if err != nil {
		return "", c.done(ctx, "beginMultipart", bucket, key, start, c.wrap("beginMultipart", bucket, key, err), 0, nil)
	}
	uploadID := aws.ToString(out.UploadId)

	if err := c.registry.Register(uploadID); err != nil {
		c.abortRemote(ctx, bucket, key, uploadID)
		return "", c.done(ctx, "beginMultipart", bucket, key, start, err, 0, nil)
	}
	return uploadID, c.done(ctx, "beginMultipart", bucket, key, start, nil, 0, map[string]interface{}{"uploadId": uploadID})
}

func (c *S3Client) abortRemote(ctx context.Context, bucket, key, uploadID string) {
	_, err := c.api.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		c.logger.Warn("Failed to abort unregistered multipart upload", err, map[string]interface{}{
			"bucket": bucket, "key": key, "uploadId": uploadID,
		})
	}
}

// UploadPart sends the next part of uploadID and returns the manifest recorded so far.
// Calls for the same id are serialised. The payload is staged in memory so the
// SDK can sign it; a negative size reads the reader to the end.
func (c *S3Client) UploadPart(ctx context.Context, bucket, key, uploadID string, reader io.Reader, size int64) ([]objectstore.Part, error) {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return nil, err
	}
	start := time.Now()

	var partNumber int32
	parts, err := c.registry.NextPart(uploadID, func(n int32) (objectstore.Part, error) {
		partNumber = n
		c.logger.Debug("Uploading part", nil, map[string]interface{}{
			"bucket": bucket, "key": key, "uploadId": uploadID, "partNumber": n,
		})

		buf, err := c.bufferPool.Stage(reader, size)
		if err != nil {
			return objectstore.Part{}, c.wrap("uploadPart", bucket, key, err)
		}
		defer c.bufferPool.Put(buf)
		length := int64(buf.Len())

		out, err := c.api.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:        aws.String(bucket),
			Key:           aws.String(key),
			UploadId:      aws.String(uploadID),
			PartNumber:    aws.Int32(n),
			Body:          bytes.NewReader(buf.Bytes()),
			ContentLength: aws.Int64(length),
		})
		if err != nil {
			return objectstore.Part{}, c.wrap("uploadPart", bucket, key, err)
		}
		return objectstore.Part{ETag: aws.ToString(out.ETag), Size: length}, nil
	})

	metadata := map[string]interface{}{"uploadId": uploadID}
	if partNumber > 0 {
		metadata["partNumber"] = partNumber
	}
	if err != nil {
		return nil, c.done(ctx, "uploadPart", bucket, key, start, err, 0, metadata)
	}
	return parts, c.done(ctx, "uploadPart", bucket, key, start, nil, parts[len(parts)-1].Size, metadata)
}

// CompleteMultipart submits the recorded manifest in part order. On failure the
// id stays registered so the completion can be retried or aborted.
func (c *S3Client) CompleteMultipart(ctx context.Context, bucket, key, uploadID string) (objectstore.UploadInfo, error) {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return objectstore.UploadInfo{}, err
	}
	start := time.Now()
	c.logger.Debug("Completing multipart upload", nil, map[string]interface{}{"bucket": bucket, "key": key, "uploadId": uploadID})

	var result objectstore.UploadInfo
	var partCount int
	err := c.registry.Complete(uploadID, func(parts []objectstore.Part) error {
		partCount = len(parts)
		completed := make([]types.CompletedPart, len(parts))
		var total int64
		for i, p := range parts {
			completed[i] = types.CompletedPart{ETag: aws.String(p.ETag), PartNumber: aws.Int32(p.Number)}
			total += p.Size
		}

		out, err := c.api.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
			Bucket:          aws.String(bucket),
			Key:             aws.String(key),
			UploadId:        aws.String(uploadID),
			MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
		})
		if err != nil {
			return c.wrap("completeMultipart", bucket, key, err)
		}
		result = objectstore.UploadInfo{
			Bucket:    bucket,
			Key:       key,
			ETag:      aws.ToString(out.ETag),
			Size:      total,
			VersionID: aws.ToString(out.VersionId),
		}
		return nil
	})

	metadata := map[string]interface{}{"uploadId": uploadID, "parts": partCount}
	if err != nil {
		return objectstore.UploadInfo{}, c.done(ctx, "completeMultipart", bucket, key, start, err, 0, metadata)
	}
	return result, c.done(ctx, "completeMultipart", bucket, key, start, nil, result.Size, metadata)
}

// AbortMultipart forgets uploadID and asks the store to discard its parts.
// The local entry is dropped even when the remote call fails.
func (c *S3Client) AbortMultipart(ctx context.Context, bucket, key, uploadID string) error {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return err
	}
	if uploadID == "" {
		return fmt.Errorf("%w: upload id is empty", objectstore.ErrInvalidArgument)
	}
	start := time.Now()
	c.logger.Debug("Aborting multipart upload", nil, map[string]interface{}{"bucket": bucket, "key": key, "uploadId": uploadID})

	registered := c.registry.Remove(uploadID)

	_, err := c.api.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	metadata := map[string]interface{}{"uploadId": uploadID, "registered": registered}
	return c.done(ctx, "abortMultipart", bucket, key, start, c.wrap("abortMultipart", bucket, key, err), 0, metadata)
}

// CleanupIncompleteUploads aborts multipart uploads under prefix started more
// than olderThan ago and returns how many were aborted.
func (c *S3Client) CleanupIncompleteUploads(ctx context.Context, bucket, prefix string, olderThan time.Duration) (int, error) {
	if err := objectstore.ValidateBucket(bucket); err != nil {
		return 0, err
	}
	start := time.Now()
	cutoff := start.Add(-olderThan)

	var stale []types.MultipartUpload
	input := &s3.ListMultipartUploadsInput{Bucket: aws.String(bucket), Prefix: aws.String(prefix)}
	for {
		out, err := c.api.ListMultipartUploads(ctx, input)
		if err != nil {
			return 0, c.done(ctx, "cleanupIncompleteUploads", bucket, prefix, start, c.wrap("cleanupIncompleteUploads", bucket, prefix, err), 0, nil)
		}
		for _, upload := range out.Uploads {
			if aws.ToTime(upload.Initiated).Before(cutoff) {
				stale = append(stale, upload)
			}
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		input.KeyMarker = out.NextKeyMarker
		input.UploadIdMarker = out.NextUploadIdMarker
	}

	aborted, released := 0, 0
	for _, upload := range stale {
		key, uploadID := aws.ToString(upload.Key), aws.ToString(upload.UploadId)
		if c.registry.Remove(uploadID) {
			released++
		}
		_, err := c.api.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
			Bucket:   aws.String(bucket),
			Key:      aws.String(key),
			UploadId: aws.String(uploadID),
		})
		if err != nil {
			c.logger.Warn("Failed to abort incomplete upload during cleanup", err, map[string]interface{}{
				"bucket": bucket, "key": key, "uploadId": uploadID,
			})
			continue
		}
		aborted++
	}

	c.logger.Info("Cleaned up incomplete uploads", nil, map[string]interface{}{"bucket": bucket, "prefix": prefix, "aborted": aborted})
	return aborted, c.done(ctx, "cleanupIncompleteUploads", bucket, prefix, start, nil, 0, map[string]interface{}{"aborted": aborted, "released": released})
}
