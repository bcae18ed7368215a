package minio

import (
	"context"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
)

// CreateBucket creates bucket in the configured region.
func (m *MinioClient) CreateBucket(ctx context.Context, bucket string) error {
	if err := objectstore.ValidateBucket(bucket); err != nil {
		return err
	}
	start := time.Now()
	m.logger.Debug("Creating bucket", nil, map[string]interface{}{"bucket": bucket})

	err := m.api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: m.cfg.Store.RegionOrDefault()})
	return m.done(ctx, "createBucket", bucket, "", start, m.wrap("createBucket", bucket, "", err), 0, nil)
}

// ListBuckets lists every bucket the credentials can see.
func (m *MinioClient) ListBuckets(ctx context.Context) ([]objectstore.BucketInfo, error) {
	start := time.Now()

	buckets, err := m.api.ListBuckets(ctx)
	if err != nil {
		return nil, m.done(ctx, "listBuckets", "", "", start, m.wrap("listBuckets", "", "", err), 0, nil)
	}

	out := make([]objectstore.BucketInfo, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, objectstore.BucketInfo{Name: b.Name, CreationDate: b.CreationDate})
	}
	return out, m.done(ctx, "listBuckets", "", "", start, nil, 0, nil)
}

// RemoveBucket removes an empty bucket.
func (m *MinioClient) RemoveBucket(ctx context.Context, bucket string) error {
	if err := objectstore.ValidateBucket(bucket); err != nil {
		return err
	}
	start := time.Now()
	m.logger.Debug("Removing bucket", nil, map[string]interface{}{"bucket": bucket})

	err := m.api.RemoveBucket(ctx, bucket)
	return m.done(ctx, "removeBucket", bucket, "", start, m.wrap("removeBucket", bucket, "", err), 0, nil)
}

// ListObjects lists all objects under prefix, descending into sub-prefixes.
func (m *MinioClient) ListObjects(ctx context.Context, bucket, prefix string) ([]objectstore.ObjectInfo, error) {
	if err := objectstore.ValidateBucket(bucket); err != nil {
		return nil, err
	}
	start := time.Now()

	objects, err := m.listObjects(ctx, bucket, prefix)
	if err != nil {
		return nil, m.done(ctx, "listObjects", bucket, prefix, start, m.wrap("listObjects", bucket, prefix, err), 0, nil)
	}

	out := make([]objectstore.ObjectInfo, 0, len(objects))
	for _, o := range objects {
		out = append(out, objectstore.ObjectInfo{
			Key:          o.Key,
			Size:         o.Size,
			ETag:         o.ETag,
			LastModified: o.LastModified,
			ContentType:  o.ContentType,
		})
	}
	return out, m.done(ctx, "listObjects", bucket, prefix, start, nil, 0, map[string]interface{}{"count": len(out)})
}

// listObjects drains the SDK listing channel. It stops at the first listing error.
func (m *MinioClient) listObjects(ctx context.Context, bucket, prefix string) ([]minio.ObjectInfo, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var objects []minio.ObjectInfo
	for obj := range m.api.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		objects = append(objects, obj)
	}
	return objects, nil
}
