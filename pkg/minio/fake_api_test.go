package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
)

// fakeAPI is an in-memory stand-in for both the minio Client and Core surfaces.
type fakeAPI struct {
	mu sync.Mutex

	buckets map[string]map[string][]byte
	uploads map[string]*fakeUpload
	nextID  int

	// failures injected per operation name; consulted before doing any work.
	failures map[string]error
	// failPart fails PutObjectPart for the given part number.
	failPart map[int]error
	// failRemove fails deletion of the given keys in RemoveObjects.
	failRemove map[string]error
	// failPutSuffix fails PutObject for keys ending in it.
	failPutSuffix string

	composeCalls int
	abortCalls   []string
	putPartCalls []int
}

type fakeUpload struct {
	bucket    string
	key       string
	parts     map[int][]byte
	initiated time.Time
}

func newFakeAPI(buckets ...string) *fakeAPI {
	f := &fakeAPI{
		buckets:    make(map[string]map[string][]byte),
		uploads:    make(map[string]*fakeUpload),
		failures:   make(map[string]error),
		failPart:   make(map[int]error),
		failRemove: make(map[string]error),
	}
	for _, b := range buckets {
		f.buckets[b] = make(map[string][]byte)
	}
	return f
}

func (f *fakeAPI) fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

func (f *fakeAPI) failure(op string) error {
	return f.failures[op]
}

func (f *fakeAPI) object(bucket, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.buckets[bucket][key]
	return data, ok
}

func (f *fakeAPI) keys(bucket string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f *fakeAPI) putRaw(bucket, key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets[bucket][key] = data
}

func noSuchBucket(bucket string) error {
	return minio.ErrorResponse{Code: "NoSuchBucket", BucketName: bucket, Message: "The specified bucket does not exist"}
}

func (f *fakeAPI) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("MakeBucket"); err != nil {
		return err
	}
	if _, ok := f.buckets[bucket]; ok {
		return minio.ErrorResponse{Code: "BucketAlreadyOwnedByYou", BucketName: bucket}
	}
	f.buckets[bucket] = make(map[string][]byte)
	return nil
}

func (f *fakeAPI) ListBuckets(context.Context) ([]minio.BucketInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("ListBuckets"); err != nil {
		return nil, err
	}
	var out []minio.BucketInfo
	for name := range f.buckets {
		out = append(out, minio.BucketInfo{Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeAPI) RemoveBucket(_ context.Context, bucket string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("RemoveBucket"); err != nil {
		return err
	}
	objects, ok := f.buckets[bucket]
	if !ok {
		return noSuchBucket(bucket)
	}
	if len(objects) > 0 {
		return minio.ErrorResponse{Code: "BucketNotEmpty", BucketName: bucket}
	}
	delete(f.buckets, bucket)
	return nil
}

func (f *fakeAPI) BucketExists(_ context.Context, bucket string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("BucketExists"); err != nil {
		return false, err
	}
	_, ok := f.buckets[bucket]
	return ok, nil
}

// ListObjects returns keys in lexical order, like the real service.
func (f *fakeAPI) ListObjects(_ context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []minio.ObjectInfo
	if err := f.failure("ListObjects"); err != nil {
		out = append(out, minio.ObjectInfo{Err: err})
	} else if objects, ok := f.buckets[bucket]; !ok {
		out = append(out, minio.ObjectInfo{Err: noSuchBucket(bucket)})
	} else {
		for key, data := range objects {
			if strings.HasPrefix(key, opts.Prefix) {
				out = append(out, minio.ObjectInfo{Key: key, Size: int64(len(data)), ETag: etagOf(data)})
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	}

	ch := make(chan minio.ObjectInfo, len(out))
	for _, o := range out {
		ch <- o
	}
	close(ch)
	return ch
}

func (f *fakeAPI) PutObject(_ context.Context, bucket, key string, reader io.Reader, size int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	if size >= 0 && int64(len(data)) != size {
		return minio.UploadInfo{}, fmt.Errorf("size mismatch: declared %d, read %d", size, len(data))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("PutObject"); err != nil {
		return minio.UploadInfo{}, err
	}
	if f.failPutSuffix != "" && strings.HasSuffix(key, f.failPutSuffix) {
		return minio.UploadInfo{}, errors.New("injected put failure")
	}
	objects, ok := f.buckets[bucket]
	if !ok {
		return minio.UploadInfo{}, noSuchBucket(bucket)
	}
	objects[key] = data
	return minio.UploadInfo{Bucket: bucket, Key: key, ETag: etagOf(data), Size: int64(len(data))}, nil
}

func (f *fakeAPI) FPutObject(ctx context.Context, bucket, key, path string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return minio.UploadInfo{}, errors.New("not supported by fake")
}

func (f *fakeAPI) GetObject(_ context.Context, bucket, key string, _ minio.GetObjectOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.buckets[bucket][key]
	if !ok {
		return nil, minio.ErrorResponse{Code: "NoSuchKey", BucketName: bucket, Key: key}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeAPI) FGetObject(context.Context, string, string, string, minio.GetObjectOptions) error {
	return errors.New("not supported by fake")
}

func (f *fakeAPI) RemoveObject(_ context.Context, bucket, key string, _ minio.RemoveObjectOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("RemoveObject"); err != nil {
		return err
	}
	delete(f.buckets[bucket], key)
	return nil
}

func (f *fakeAPI) RemoveObjects(_ context.Context, bucket string, objectsCh <-chan minio.ObjectInfo, _ minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError {
	var errs []minio.RemoveObjectError
	for obj := range objectsCh {
		f.mu.Lock()
		if err, ok := f.failRemove[obj.Key]; ok {
			errs = append(errs, minio.RemoveObjectError{ObjectName: obj.Key, Err: err})
		} else {
			delete(f.buckets[bucket], obj.Key)
		}
		f.mu.Unlock()
	}

	ch := make(chan minio.RemoveObjectError, len(errs))
	for _, e := range errs {
		ch <- e
	}
	close(ch)
	return ch
}

func (f *fakeAPI) ComposeObject(_ context.Context, dst minio.CopyDestOptions, srcs ...minio.CopySrcOptions) (minio.UploadInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.composeCalls++
	if err := f.failure("ComposeObject"); err != nil {
		return minio.UploadInfo{}, err
	}

	var merged []byte
	for _, src := range srcs {
		data, ok := f.buckets[src.Bucket][src.Object]
		if !ok {
			return minio.UploadInfo{}, minio.ErrorResponse{Code: "NoSuchKey", Key: src.Object}
		}
		merged = append(merged, data...)
	}
	f.buckets[dst.Bucket][dst.Object] = merged
	return minio.UploadInfo{Bucket: dst.Bucket, Key: dst.Object, ETag: etagOf(merged), Size: int64(len(merged))}, nil
}

func (f *fakeAPI) PresignedGetObject(_ context.Context, bucket, key string, expires time.Duration, _ url.Values) (*url.URL, error) {
	return fakePresign(bucket, key, expires)
}

func (f *fakeAPI) PresignedPutObject(_ context.Context, bucket, key string, expires time.Duration) (*url.URL, error) {
	return fakePresign(bucket, key, expires)
}

func fakePresign(bucket, key string, expires time.Duration) (*url.URL, error) {
	return url.Parse(fmt.Sprintf("http://fake:9000/%s/%s?X-Amz-Expires=%d", bucket, key, int(expires.Seconds())))
}

func (f *fakeAPI) ListIncompleteUploads(_ context.Context, bucket, prefix string, _ bool) <-chan minio.ObjectMultipartInfo {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []minio.ObjectMultipartInfo
	for id, u := range f.uploads {
		if u.bucket == bucket && strings.HasPrefix(u.key, prefix) {
			out = append(out, minio.ObjectMultipartInfo{Key: u.key, UploadID: id, Initiated: u.initiated})
		}
	}
	ch := make(chan minio.ObjectMultipartInfo, len(out))
	for _, o := range out {
		ch <- o
	}
	close(ch)
	return ch
}

func (f *fakeAPI) NewMultipartUpload(_ context.Context, bucket, key string, _ minio.PutObjectOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("NewMultipartUpload"); err != nil {
		return "", err
	}
	f.nextID++
	id := fmt.Sprintf("upload-%d", f.nextID)
	f.uploads[id] = &fakeUpload{bucket: bucket, key: key, parts: make(map[int][]byte), initiated: time.Now()}
	return id, nil
}

func (f *fakeAPI) PutObjectPart(_ context.Context, _, _, uploadID string, partID int, data io.Reader, size int64, _ minio.PutObjectPartOptions) (minio.ObjectPart, error) {
	payload, err := io.ReadAll(data)
	if err != nil {
		return minio.ObjectPart{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.putPartCalls = append(f.putPartCalls, partID)
	if err := f.failPart[partID]; err != nil {
		delete(f.failPart, partID)
		return minio.ObjectPart{}, err
	}
	u, ok := f.uploads[uploadID]
	if !ok {
		return minio.ObjectPart{}, minio.ErrorResponse{Code: "NoSuchUpload"}
	}
	if size >= 0 && int64(len(payload)) != size {
		return minio.ObjectPart{}, fmt.Errorf("size mismatch: declared %d, read %d", size, len(payload))
	}
	u.parts[partID] = payload
	return minio.ObjectPart{PartNumber: partID, ETag: etagOf(payload), Size: int64(len(payload))}, nil
}

func (f *fakeAPI) CompleteMultipartUpload(_ context.Context, bucket, key, uploadID string, parts []minio.CompletePart, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("CompleteMultipartUpload"); err != nil {
		return minio.UploadInfo{}, err
	}
	u, ok := f.uploads[uploadID]
	if !ok {
		return minio.UploadInfo{}, minio.ErrorResponse{Code: "NoSuchUpload"}
	}

	var merged []byte
	for i, p := range parts {
		if p.PartNumber != i+1 {
			return minio.UploadInfo{}, minio.ErrorResponse{Code: "InvalidPartOrder"}
		}
		data, ok := u.parts[p.PartNumber]
		if !ok || etagOf(data) != p.ETag {
			return minio.UploadInfo{}, minio.ErrorResponse{Code: "InvalidPart"}
		}
		merged = append(merged, data...)
	}
	f.buckets[bucket][key] = merged
	delete(f.uploads, uploadID)
	return minio.UploadInfo{Bucket: bucket, Key: key, ETag: etagOf(merged) + "-" + fmt.Sprint(len(parts)), Size: int64(len(merged))}, nil
}

func (f *fakeAPI) AbortMultipartUpload(_ context.Context, _, _, uploadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abortCalls = append(f.abortCalls, uploadID)
	if err := f.failure("AbortMultipartUpload"); err != nil {
		return err
	}
	if _, ok := f.uploads[uploadID]; !ok {
		return minio.ErrorResponse{Code: "NoSuchUpload"}
	}
	delete(f.uploads, uploadID)
	return nil
}

func etagOf(data []byte) string {
	var sum uint32
	for _, b := range data {
		sum = sum*31 + uint32(b)
	}
	return fmt.Sprintf("%08x-%d", sum, len(data))
}
