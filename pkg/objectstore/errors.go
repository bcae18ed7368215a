package objectstore

import (
	"errors"
	"fmt"
)

// Errors shared by all backends. Remote failures are never returned bare; they are
// wrapped in *OperationError, which matches ErrOperationFailed with errors.Is.
var (
	// ErrOperationFailed matches every *OperationError.
	ErrOperationFailed = errors.New("operation failed")

	// ErrInvalidConfig is returned when required settings are missing or malformed.
	ErrInvalidConfig = errors.New("invalid object store configuration")

	// ErrInvalidArgument is returned for locally rejected arguments (empty bucket, negative index...).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownUpload is returned when an upload id is not registered in this process,
	// either because it never was, or because it was completed or aborted.
	ErrUnknownUpload = errors.New("unknown upload")

	// ErrUploadExists is returned when an upload id is registered twice.
	ErrUploadExists = errors.New("upload already registered")

	// ErrEmptyManifest is returned when completing an upload that has no parts or chunks.
	ErrEmptyManifest = errors.New("upload has no parts")

	// ErrIncompleteManifest is returned when part numbers are not contiguous from 1.
	ErrIncompleteManifest = errors.New("upload manifest is not contiguous")

	// ErrMissingChunk is returned by a chunk merge when chunk indices are not contiguous from 0.
	ErrMissingChunk = errors.New("chunk sequence has a gap")
)

// OperationError carries the context of a failed remote call together with its cause.
type OperationError struct {
	// Backend is the adapter that failed, e.g. "minio" or "s3".
	Backend string
	// Op is the operation name, e.g. "put" or "completeMultipart".
	Op string
	// Bucket is the bucket involved, if any.
	Bucket string
	// Key is the object key involved, if any.
	Key string
	// Err is the underlying cause.
	Err error
}

// NewOperationError wraps err with the operation context.
func NewOperationError(backend, op, bucket, key string, err error) *OperationError {
	return &OperationError{
		Backend: backend,
		Op:      op,
		Bucket:  bucket,
		Key:     key,
		Err:     err,
	}
}

func (e *OperationError) Error() string {
	target := ""
	switch {
	case e.Bucket != "" && e.Key != "":
		target = " " + e.Bucket + "/" + e.Key
	case e.Bucket != "":
		target = " bucket " + e.Bucket
	case e.Key != "":
		target = " object " + e.Key
	}
	return fmt.Sprintf("%s.%s%s: %s: %v", e.Backend, e.Op, target, ErrOperationFailed.Error(), e.Err)
}

// Unwrap returns the underlying cause.
func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is reports ErrOperationFailed as a match so callers need not know the concrete type.
func (e *OperationError) Is(target error) bool {
	return target == ErrOperationFailed
}

// IsUnknownUpload reports whether err is caused by an unregistered upload id.
func IsUnknownUpload(err error) bool {
	return errors.Is(err, ErrUnknownUpload)
}

// IsOperationFailed reports whether err wraps a failed remote operation.
func IsOperationFailed(err error) bool {
	return errors.Is(err, ErrOperationFailed)
}
