package objectstore

import (
	"fmt"
	"strconv"
	"strings"
)

// ChunkSuffix terminates every chunk object key.
const ChunkSuffix = ".chunk"

// ChunkPrefix returns the key prefix under which all chunks of uploadID live.
func ChunkPrefix(uploadID string) string {
	return uploadID + "/"
}

// ChunkKey returns the object key of chunk index within uploadID,
// e.g. "3f2a.../7.chunk".
func ChunkKey(uploadID string, index int) string {
	return ChunkPrefix(uploadID) + strconv.Itoa(index) + ChunkSuffix
}

// ParseChunkIndex extracts the index from a key built by ChunkKey for uploadID.
// Keys that do not belong to uploadID, or that ChunkKey could not have
// produced, return ok=false.
func ParseChunkIndex(uploadID, key string) (index int, ok bool) {
	rest, found := strings.CutPrefix(key, ChunkPrefix(uploadID))
	if !found {
		return 0, false
	}
	digits, found := strings.CutSuffix(rest, ChunkSuffix)
	if !found || digits == "" {
		return 0, false
	}
	// ChunkKey never writes leading zeros, so "01" is not chunk 1.
	if len(digits) > 1 && digits[0] == '0' {
		return 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ValidateBucket rejects empty bucket names before any network call.
func ValidateBucket(bucket string) error {
	if strings.TrimSpace(bucket) == "" {
		return fmt.Errorf("%w: bucket name is empty", ErrInvalidArgument)
	}
	return nil
}

// ValidateKey rejects an empty bucket or object key before any network call.
func ValidateKey(bucket, key string) error {
	if err := ValidateBucket(bucket); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("%w: object key is empty", ErrInvalidArgument)
	}
	return nil
}
