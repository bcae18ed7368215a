package objectstore

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Store is the capability surface shared by every backend adapter.
//
// Every object-level method takes an explicit bucket. Bucket-less convenience
// calls live on the Bucket handle, which only delegates here.
//
// This interface is implemented by *minio.MinioClient and *s3.S3Client.
type Store interface {
	// Bucket operations

	// CreateBucket creates a bucket. It fails if the bucket already exists.
	CreateBucket(ctx context.Context, bucket string) error

	// ListBuckets lists all buckets visible to the configured credentials.
	ListBuckets(ctx context.Context) ([]BucketInfo, error)

	// RemoveBucket removes an empty bucket.
	RemoveBucket(ctx context.Context, bucket string) error

	// Object operations

	// ListObjects lists every object under prefix, recursively.
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)

	// Put uploads size bytes read from reader. A negative size means unknown.
	Put(ctx context.Context, bucket, key string, reader io.Reader, size int64) (UploadInfo, error)

	// PutFile uploads the local file at path.
	PutFile(ctx context.Context, bucket, key, path string) (UploadInfo, error)

	// Get opens the object for streaming. The caller must close the reader.
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// GetFile downloads the object into the local file at path.
	GetFile(ctx context.Context, bucket, key, path string) error

	// Delete removes an object.
	Delete(ctx context.Context, bucket, key string) error

	// Presigned URL operations

	// PresignGet returns a time-limited GET URL. A zero expiry selects the backend default.
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (PresignedRequest, error)

	// PresignPut returns a time-limited PUT URL. A zero expiry selects the backend default.
	PresignPut(ctx context.Context, bucket, key string, expiry time.Duration) (PresignedRequest, error)

	// Multipart upload operations

	// BeginMultipart starts a native multipart upload and registers it locally.
	BeginMultipart(ctx context.Context, bucket, key string) (string, error)

	// UploadPart uploads the next part of uploadID and returns the manifest so far.
	// Part numbers come from the local PartRegistry, starting at 1 in call order.
	UploadPart(ctx context.Context, bucket, key, uploadID string, reader io.Reader, size int64) ([]Part, error)

	// CompleteMultipart submits the manifest and forgets the upload.
	CompleteMultipart(ctx context.Context, bucket, key, uploadID string) (UploadInfo, error)

	// AbortMultipart cancels the remote upload and always forgets it locally.
	AbortMultipart(ctx context.Context, bucket, key, uploadID string) error

	// DefaultBucket returns the configured default bucket name.
	DefaultBucket() string
}

// BucketInfo describes a bucket.
type BucketInfo struct {
	Name         string    `json:"name"`
	CreationDate time.Time `json:"creationDate"`
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"lastModified"`
	ContentType  string    `json:"contentType,omitempty"`
}

// UploadInfo is the result of a completed write.
type UploadInfo struct {
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	ETag      string `json:"etag"`
	Size      int64  `json:"size"`
	VersionID string `json:"versionId,omitempty"`
}

// Part is one completed part of a native multipart upload.
type Part struct {
	Number int32  `json:"partNumber"`
	ETag   string `json:"etag"`
	Size   int64  `json:"size"`
}

// PresignedRequest is a signed, time-limited request.
type PresignedRequest struct {
	// Method is "GET" or "PUT".
	Method string `json:"method"`
	// URL is the signed URL.
	URL string `json:"url"`
	// Expiry is the signed validity window.
	Expiry time.Duration `json:"expiry"`
	// ExpiresAt is the wall-clock expiry computed at signing time.
	ExpiresAt time.Time `json:"expiresAt"`
	// SignedHeaders are headers that must be sent with the request, if any.
	SignedHeaders http.Header `json:"signedHeaders,omitempty"`
}

// NewPresignedRequest fills ExpiresAt from the current time.
func NewPresignedRequest(method, url string, expiry time.Duration, headers http.Header) PresignedRequest {
	return PresignedRequest{
		Method:        method,
		URL:           url,
		Expiry:        expiry,
		ExpiresAt:     time.Now().Add(expiry),
		SignedHeaders: headers,
	}
}
