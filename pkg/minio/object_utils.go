package minio

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
)

// Put uploads an object. A negative size streams the reader with minio-go's
// multipart machinery using Upload.PartSize.
func (m *MinioClient) Put(ctx context.Context, bucket, key string, reader io.Reader, size int64) (objectstore.UploadInfo, error) {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return objectstore.UploadInfo{}, err
	}
	start := time.Now()
	m.logger.Debug("Uploading object", nil, map[string]interface{}{"bucket": bucket, "key": key, "size": size})

	contentType, body, err := objectstore.DetectContentType(reader)
	if err != nil {
		return objectstore.UploadInfo{}, m.done(ctx, "put", bucket, key, start, m.wrap("put", bucket, key, err), 0, nil)
	}
	if size < 0 {
		size = -1
	}

	info, err := m.api.PutObject(ctx, bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
		PartSize:    m.cfg.Upload.PartSize,
	})
	if err != nil {
		return objectstore.UploadInfo{}, m.done(ctx, "put", bucket, key, start, m.wrap("put", bucket, key, err), 0, nil)
	}
	return toUploadInfo(bucket, key, info), m.done(ctx, "put", bucket, key, start, nil, info.Size, nil)
}

// PutFile uploads the local file at path. The content type is detected from the file.
func (m *MinioClient) PutFile(ctx context.Context, bucket, key, path string) (objectstore.UploadInfo, error) {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return objectstore.UploadInfo{}, err
	}
	start := time.Now()
	m.logger.Debug("Uploading file", nil, map[string]interface{}{"bucket": bucket, "key": key, "path": path})

	contentType, err := objectstore.DetectFileContentType(path)
	if err != nil {
		return objectstore.UploadInfo{}, m.done(ctx, "putFile", bucket, key, start, m.wrap("putFile", bucket, key, err), 0, nil)
	}

	info, err := m.api.FPutObject(ctx, bucket, key, path, minio.PutObjectOptions{
		ContentType: contentType,
		PartSize:    m.cfg.Upload.PartSize,
	})
	if err != nil {
		return objectstore.UploadInfo{}, m.done(ctx, "putFile", bucket, key, start, m.wrap("putFile", bucket, key, err), 0, nil)
	}
	return toUploadInfo(bucket, key, info), m.done(ctx, "putFile", bucket, key, start, nil, info.Size, nil)
}

// Get opens the object for streaming. The caller closes the reader.
func (m *MinioClient) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return nil, err
	}
	start := time.Now()
	m.logger.Debug("Downloading object", nil, map[string]interface{}{"bucket": bucket, "key": key})

	reader, err := m.api.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, m.done(ctx, "get", bucket, key, start, m.wrap("get", bucket, key, err), 0, nil)
	}
	return reader, m.done(ctx, "get", bucket, key, start, nil, 0, nil)
}

// GetFile downloads the object into the local file at path.
func (m *MinioClient) GetFile(ctx context.Context, bucket, key, path string) error {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return err
	}
	start := time.Now()
	m.logger.Debug("Downloading object to file", nil, map[string]interface{}{"bucket": bucket, "key": key, "path": path})

	err := m.api.FGetObject(ctx, bucket, key, path, minio.GetObjectOptions{})
	return m.done(ctx, "getFile", bucket, key, start, m.wrap("getFile", bucket, key, err), 0, nil)
}

// Delete removes an object.
func (m *MinioClient) Delete(ctx context.Context, bucket, key string) error {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return err
	}
	start := time.Now()
	m.logger.Debug("Deleting object", nil, map[string]interface{}{"bucket": bucket, "key": key})

	err := m.api.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
	return m.done(ctx, "delete", bucket, key, start, m.wrap("delete", bucket, key, err), 0, nil)
}

func toUploadInfo(bucket, key string, info minio.UploadInfo) objectstore.UploadInfo {
	return objectstore.UploadInfo{
		Bucket:    bucket,
		Key:       key,
		ETag:      info.ETag,
		Size:      info.Size,
		VersionID: info.VersionID,
	}
}
