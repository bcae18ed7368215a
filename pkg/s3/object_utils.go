package s3

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
)

// Put uploads an object in a single request. The SDK signs the payload, so the
// reader is staged in a pooled buffer first; use PutFile or multipart uploads
// for large payloads.
func (c *S3Client) Put(ctx context.Context, bucket, key string, reader io.Reader, size int64) (objectstore.UploadInfo, error) {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return objectstore.UploadInfo{}, err
	}
	start := time.Now()
	c.logger.Debug("Uploading object", nil, map[string]interface{}{"bucket": bucket, "key": key, "size": size})

	contentType, body, err := objectstore.DetectContentType(reader)
	if err != nil {
		return objectstore.UploadInfo{}, c.done(ctx, "put", bucket, key, start, c.wrap("put", bucket, key, err), 0, nil)
	}
	buf, err := c.bufferPool.Stage(body, size)
	if err != nil {
		return objectstore.UploadInfo{}, c.done(ctx, "put", bucket, key, start, c.wrap("put", bucket, key, err), 0, nil)
	}
	defer c.bufferPool.Put(buf)
	length := int64(buf.Len())

	out, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(length),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return objectstore.UploadInfo{}, c.done(ctx, "put", bucket, key, start, c.wrap("put", bucket, key, err), 0, nil)
	}

	info := objectstore.UploadInfo{
		Bucket:    bucket,
		Key:       key,
		ETag:      aws.ToString(out.ETag),
		Size:      length,
		VersionID: aws.ToString(out.VersionId),
	}
	return info, c.done(ctx, "put", bucket, key, start, nil, length, nil)
}

// PutFile uploads the local file at path, streaming it from disk.
func (c *S3Client) PutFile(ctx context.Context, bucket, key, path string) (objectstore.UploadInfo, error) {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return objectstore.UploadInfo{}, err
	}
	start := time.Now()
	c.logger.Debug("Uploading file", nil, map[string]interface{}{"bucket": bucket, "key": key, "path": path})

	contentType, err := objectstore.DetectFileContentType(path)
	if err != nil {
		return objectstore.UploadInfo{}, c.done(ctx, "putFile", bucket, key, start, c.wrap("putFile", bucket, key, err), 0, nil)
	}
	file, err := os.Open(path)
	if err != nil {
		return objectstore.UploadInfo{}, c.done(ctx, "putFile", bucket, key, start, c.wrap("putFile", bucket, key, err), 0, nil)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return objectstore.UploadInfo{}, c.done(ctx, "putFile", bucket, key, start, c.wrap("putFile", bucket, key, err), 0, nil)
	}

	out, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(stat.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return objectstore.UploadInfo{}, c.done(ctx, "putFile", bucket, key, start, c.wrap("putFile", bucket, key, err), 0, nil)
	}

	info := objectstore.UploadInfo{
		Bucket:    bucket,
		Key:       key,
		ETag:      aws.ToString(out.ETag),
		Size:      stat.Size(),
		VersionID: aws.ToString(out.VersionId),
	}
	return info, c.done(ctx, "putFile", bucket, key, start, nil, stat.Size(), nil)
}

// Get opens the object for streaming. The caller closes the reader.
func (c *S3Client) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return nil, err
	}
	start := time.Now()
	c.logger.Debug("Downloading object", nil, map[string]interface{}{"bucket": bucket, "key": key})

	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, c.done(ctx, "get", bucket, key, start, c.wrap("get", bucket, key, err), 0, nil)
	}
	return out.Body, c.done(ctx, "get", bucket, key, start, nil, aws.ToInt64(out.ContentLength), nil)
}

// GetFile downloads the object into the local file at path. A partially
// written file is removed on failure.
func (c *S3Client) GetFile(ctx context.Context, bucket, key, path string) error {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return err
	}
	start := time.Now()
	c.logger.Debug("Downloading object to file", nil, map[string]interface{}{"bucket": bucket, "key": key, "path": path})

	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return c.done(ctx, "getFile", bucket, key, start, c.wrap("getFile", bucket, key, err), 0, nil)
	}
	defer func() { _ = out.Body.Close() }()

	file, err := os.Create(path)
	if err != nil {
		return c.done(ctx, "getFile", bucket, key, start, c.wrap("getFile", bucket, key, err), 0, nil)
	}
	written, err := io.Copy(file, out.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return c.done(ctx, "getFile", bucket, key, start, c.wrap("getFile", bucket, key, err), 0, nil)
	}
	return c.done(ctx, "getFile", bucket, key, start, nil, written, nil)
}

// Delete removes an object. Deleting a missing key succeeds, as in S3.
func (c *S3Client) Delete(ctx context.Context, bucket, key string) error {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return err
	}
	start := time.Now()
	c.logger.Debug("Deleting object", nil, map[string]interface{}{"bucket": bucket, "key": key})

	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	return c.done(ctx, "delete", bucket, key, start, c.wrap("delete", bucket, key, err), 0, nil)
}
