package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
)

// NewChunkUploadID returns a fresh id for a chunked upload.
func NewChunkUploadID() string {
	return uuid.NewString()
}

// UploadChunk stores one chunk of a chunked upload as its own object under
// "<uploadID>/<index>.chunk". Chunks may arrive in any order and from any process.
// Every chunk except the last must be at least MinChunkSize bytes for the
// merge to succeed.
func (m *MinioClient) UploadChunk(ctx context.Context, bucket, uploadID string, index int, reader io.Reader, size int64) (objectstore.UploadInfo, error) {
	if err := objectstore.ValidateBucket(bucket); err != nil {
		return objectstore.UploadInfo{}, err
	}
	if uploadID == "" {
		return objectstore.UploadInfo{}, fmt.Errorf("%w: upload id is empty", objectstore.ErrInvalidArgument)
	}
	if index < 0 {
		return objectstore.UploadInfo{}, fmt.Errorf("%w: chunk index %d is negative", objectstore.ErrInvalidArgument, index)
	}

	key := objectstore.ChunkKey(uploadID, index)
	start := time.Now()
	m.logger.Debug("Uploading chunk", nil, map[string]interface{}{"bucket": bucket, "key": key, "size": size})

	if size < 0 {
		size = -1
	}
	info, err := m.api.PutObject(ctx, bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: objectstore.DefaultContentType,
		PartSize:    m.cfg.Upload.PartSize,
	})
	metadata := map[string]interface{}{"uploadId": uploadID, "chunk": index}
	if err != nil {
		return objectstore.UploadInfo{}, m.done(ctx, "uploadChunk", bucket, key, start, m.wrap("uploadChunk", bucket, key, err), 0, metadata)
	}
	return toUploadInfo(bucket, key, info), m.done(ctx, "uploadChunk", bucket, key, start, nil, info.Size, metadata)
}

// MergeChunks composes all chunks of uploadID, ordered by chunk index, into
// finalName and then deletes the chunks. Indices must run from 0 without gaps.
// Chunk deletion is best effort: failures are logged and do not fail the merge.
func (m *MinioClient) MergeChunks(ctx context.Context, bucket, finalName, uploadID string) (objectstore.UploadInfo, error) {
	if err := objectstore.ValidateKey(bucket, finalName); err != nil {
		return objectstore.UploadInfo{}, err
	}
	if uploadID == "" {
		return objectstore.UploadInfo{}, fmt.Errorf("%w: upload id is empty", objectstore.ErrInvalidArgument)
	}
	start := time.Now()
	m.logger.Debug("Merging chunks", nil, map[string]interface{}{"bucket": bucket, "key": finalName, "uploadId": uploadID})

	objects, err := m.listObjects(ctx, bucket, objectstore.ChunkPrefix(uploadID))
	if err != nil {
		return objectstore.UploadInfo{}, m.done(ctx, "mergeChunks", bucket, finalName, start, m.wrap("mergeChunks", bucket, finalName, err), 0, nil)
	}

	keys, err := orderChunks(uploadID, objects)
	metadata := map[string]interface{}{"uploadId": uploadID, "chunks": len(keys)}
	if err != nil {
		return objectstore.UploadInfo{}, m.done(ctx, "mergeChunks", bucket, finalName, start, err, 0, metadata)
	}

	sources := make([]minio.CopySrcOptions, len(keys))
	for i, key := range keys {
		sources[i] = minio.CopySrcOptions{Bucket: bucket, Object: key}
	}
	info, err := m.api.ComposeObject(ctx, minio.CopyDestOptions{Bucket: bucket, Object: finalName}, sources...)
	if err != nil {
		return objectstore.UploadInfo{}, m.done(ctx, "mergeChunks", bucket, finalName, start, m.wrap("mergeChunks", bucket, finalName, err), 0, metadata)
	}

	m.removeChunks(ctx, bucket, uploadID, keys)
	return toUploadInfo(bucket, finalName, info), m.done(ctx, "mergeChunks", bucket, finalName, start, nil, info.Size, metadata)
}

// orderChunks keeps the chunk keys of uploadID, sorted by numeric index, and
// checks that indices are exactly 0..n-1.
func orderChunks(uploadID string, objects []minio.ObjectInfo) ([]string, error) {
	type chunk struct {
		index int
		key   string
	}
	chunks := make([]chunk, 0, len(objects))
	for _, obj := range objects {
		if idx, ok := objectstore.ParseChunkIndex(uploadID, obj.Key); ok {
			chunks = append(chunks, chunk{index: idx, key: obj.Key})
		}
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks found for upload %s", objectstore.ErrEmptyManifest, uploadID)
	}
	if len(chunks) > maxComposeSources {
		return nil, fmt.Errorf("%w: %d chunks exceed the compose limit of %d", objectstore.ErrInvalidArgument, len(chunks), maxComposeSources)
	}

	// Listing order is lexical ("10" before "2"), so sort on the parsed index.
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].index < chunks[j].index })

	keys := make([]string, len(chunks))
	for i, c := range chunks {
		if c.index != i {
			return nil, fmt.Errorf("%w: upload %s is missing chunk %d", objectstore.ErrMissingChunk, uploadID, i)
		}
		keys[i] = c.key
	}
	return keys, nil
}

// removeChunks deletes the given chunk objects and logs anything that could not be removed.
func (m *MinioClient) removeChunks(ctx context.Context, bucket, uploadID string, keys []string) {
	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	failed := 0
	for rErr := range m.api.RemoveObjects(ctx, bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		failed++
		m.logger.Warn("Failed to delete merged chunk", rErr.Err, map[string]interface{}{
			"bucket": bucket, "key": rErr.ObjectName, "uploadId": uploadID,
		})
	}
	if failed == 0 {
		m.logger.Debug("Deleted merged chunks", nil, map[string]interface{}{"bucket": bucket, "uploadId": uploadID, "chunks": len(keys)})
	}
}

// UploadChunks splits reader into chunkSize pieces, uploads up to concurrency of
// them at a time under a fresh upload id and merges them into finalName.
// Zero chunkSize or concurrency selects the configured defaults. If any chunk
// fails, the chunks already stored are deleted and the first error is returned.
func (m *MinioClient) UploadChunks(ctx context.Context, bucket, finalName string, reader io.Reader, chunkSize int64, concurrency int) (objectstore.UploadInfo, error) {
	if err := objectstore.ValidateKey(bucket, finalName); err != nil {
		return objectstore.UploadInfo{}, err
	}
	if chunkSize == 0 {
		chunkSize = m.cfg.chunkSize()
	}
	if chunkSize < MinChunkSize {
		return objectstore.UploadInfo{}, fmt.Errorf("%w: chunk size must be at least %d bytes", objectstore.ErrInvalidArgument, MinChunkSize)
	}
	if concurrency <= 0 {
		concurrency = m.cfg.chunkConcurrency()
	}

	uploadID := NewChunkUploadID()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	count, readErr := m.dispatchChunks(gctx, g, bucket, uploadID, reader, chunkSize)
	if err := g.Wait(); err != nil || readErr != nil {
		if err == nil {
			err = m.wrap("uploadChunks", bucket, finalName, readErr)
		}
		keys := make([]string, count)
		for i := range keys {
			keys[i] = objectstore.ChunkKey(uploadID, i)
		}
		m.removeChunks(context.WithoutCancel(ctx), bucket, uploadID, keys)
		return objectstore.UploadInfo{}, err
	}

	if count == 0 {
		return m.Put(ctx, bucket, finalName, bytes.NewReader(nil), 0)
	}
	return m.MergeChunks(ctx, bucket, finalName, uploadID)
}

// dispatchChunks reads reader sequentially and hands each chunk to g. It returns
// the number of chunks dispatched and the first read error.
func (m *MinioClient) dispatchChunks(ctx context.Context, g *errgroup.Group, bucket, uploadID string, reader io.Reader, chunkSize int64) (int, error) {
	index := 0
	for {
		if err := ctx.Err(); err != nil {
			return index, err
		}

		buf := m.bufferPool.Get()
		n, err := io.CopyN(buf, reader, chunkSize)
		if err != nil && !errors.Is(err, io.EOF) {
			m.bufferPool.Put(buf)
			return index, err
		}
		if n == 0 {
			m.bufferPool.Put(buf)
			return index, nil
		}

		chunkIndex := index
		g.Go(func() error {
			defer m.bufferPool.Put(buf)
			_, uploadErr := m.UploadChunk(ctx, bucket, uploadID, chunkIndex, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
			return uploadErr
		})
		index++

		if n < chunkSize {
			return index, nil
		}
	}
}
