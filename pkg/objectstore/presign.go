package objectstore

import (
	"fmt"
	"time"
)

// MaxPresignExpiry is the longest validity a SigV4 presigned URL may have.
const MaxPresignExpiry = 7 * 24 * time.Hour

// ResolveExpiry returns fallback for a zero expiry and rejects anything
// outside 1s..MaxPresignExpiry with ErrInvalidArgument.
func ResolveExpiry(expiry, fallback time.Duration) (time.Duration, error) {
	if expiry == 0 {
		return fallback, nil
	}
	if expiry < time.Second || expiry > MaxPresignExpiry {
		return 0, fmt.Errorf("%w: presign expiry must be between 1s and %s, got %s", ErrInvalidArgument, MaxPresignExpiry, expiry)
	}
	return expiry, nil
}
