package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"
)

// Bucket binds a Store to one bucket name. Every method delegates to the Store
// method of the same name with the bound bucket, so calling through a Bucket
// behaves exactly like calling the Store with that bucket.
type Bucket struct {
	store Store
	name  string
}

// DefaultBucket binds the store's configured default bucket.
func DefaultBucket(store Store) *Bucket {
	return &Bucket{store: store, name: store.DefaultBucket()}
}

// InBucket binds an explicit bucket name.
func InBucket(store Store, name string) *Bucket {
	return &Bucket{store: store, name: name}
}

// Name returns the bound bucket name.
func (b *Bucket) Name() string {
	return b.name
}

// Create creates the bound bucket.
func (b *Bucket) Create(ctx context.Context) error {
	return b.store.CreateBucket(ctx, b.name)
}

// Remove removes the bound bucket.
func (b *Bucket) Remove(ctx context.Context) error {
	return b.store.RemoveBucket(ctx, b.name)
}

func (b *Bucket) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	return b.store.ListObjects(ctx, b.name, prefix)
}

func (b *Bucket) Put(ctx context.Context, key string, reader io.Reader, size int64) (UploadInfo, error) {
	return b.store.Put(ctx, b.name, key, reader, size)
}

// PutBytes uploads an in-memory payload.
func (b *Bucket) PutBytes(ctx context.Context, key string, data []byte) (UploadInfo, error) {
	return b.store.Put(ctx, b.name, key, bytes.NewReader(data), int64(len(data)))
}

func (b *Bucket) PutFile(ctx context.Context, key, path string) (UploadInfo, error) {
	return b.store.PutFile(ctx, b.name, key, path)
}

func (b *Bucket) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return b.store.Get(ctx, b.name, key)
}

// GetBytes downloads the whole object into memory.
func (b *Bucket) GetBytes(ctx context.Context, key string) ([]byte, error) {
	reader, err := b.store.Get(ctx, b.name, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s/%s: %w", b.name, key, err)
	}
	return data, nil
}

// WriteTo streams the object into w and returns the number of bytes copied.
func (b *Bucket) WriteTo(ctx context.Context, key string, w io.Writer) (int64, error) {
	reader, err := b.store.Get(ctx, b.name, key)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	n, err := io.Copy(w, reader)
	if err != nil {
		return n, fmt.Errorf("failed to stream object %s/%s: %w", b.name, key, err)
	}
	return n, nil
}

func (b *Bucket) GetFile(ctx context.Context, key, path string) error {
	return b.store.GetFile(ctx, b.name, key, path)
}

func (b *Bucket) Delete(ctx context.Context, key string) error {
	return b.store.Delete(ctx, b.name, key)
}

func (b *Bucket) PresignGet(ctx context.Context, key string, expiry time.Duration) (PresignedRequest, error) {
	return b.store.PresignGet(ctx, b.name, key, expiry)
}

func (b *Bucket) PresignPut(ctx context.Context, key string, expiry time.Duration) (PresignedRequest, error) {
	return b.store.PresignPut(ctx, b.name, key, expiry)
}

func (b *Bucket) BeginMultipart(ctx context.Context, key string) (string, error) {
	return b.store.BeginMultipart(ctx, b.name, key)
}

func (b *Bucket) UploadPart(ctx context.Context, key, uploadID string, reader io.Reader, size int64) ([]Part, error) {
	return b.store.UploadPart(ctx, b.name, key, uploadID, reader, size)
}

func (b *Bucket) CompleteMultipart(ctx context.Context, key, uploadID string) (UploadInfo, error) {
	return b.store.CompleteMultipart(ctx, b.name, key, uploadID)
}

func (b *Bucket) AbortMultipart(ctx context.Context, key, uploadID string) error {
	return b.store.AbortMultipart(ctx, b.name, key, uploadID)
}
