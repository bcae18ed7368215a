package minio

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
)

// PresignGet returns a GET URL valid for expiry, or Presigned.GetExpiry when expiry is zero.
func (m *MinioClient) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (objectstore.PresignedRequest, error) {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return objectstore.PresignedRequest{}, err
	}
	expiry, err := objectstore.ResolveExpiry(expiry, m.cfg.getExpiry())
	if err != nil {
		return objectstore.PresignedRequest{}, err
	}
	start := time.Now()

	u, err := m.api.PresignedGetObject(ctx, bucket, key, expiry, nil)
	if err != nil {
		return objectstore.PresignedRequest{}, m.done(ctx, "presignGet", bucket, key, start, m.wrap("presignGet", bucket, key, err), 0, nil)
	}
	return m.presigned(ctx, http.MethodGet, "presignGet", bucket, key, start, u, expiry)
}

// PresignPut returns a PUT URL valid for expiry, or Presigned.PutExpiry when expiry is zero.
func (m *MinioClient) PresignPut(ctx context.Context, bucket, key string, expiry time.Duration) (objectstore.PresignedRequest, error) {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return objectstore.PresignedRequest{}, err
	}
	expiry, err := objectstore.ResolveExpiry(expiry, m.cfg.putExpiry())
	if err != nil {
		return objectstore.PresignedRequest{}, err
	}
	start := time.Now()

	u, err := m.api.PresignedPutObject(ctx, bucket, key, expiry)
	if err != nil {
		return objectstore.PresignedRequest{}, m.done(ctx, "presignPut", bucket, key, start, m.wrap("presignPut", bucket, key, err), 0, nil)
	}
	return m.presigned(ctx, http.MethodPut, "presignPut", bucket, key, start, u, expiry)
}

func (m *MinioClient) presigned(ctx context.Context, method, op, bucket, key string, start time.Time, u *url.URL, expiry time.Duration) (objectstore.PresignedRequest, error) {
	finalURL := u.String()
	if m.cfg.Presigned.BaseURL != "" {
		rewritten, err := urlGenerator(u, m.cfg.Presigned.BaseURL)
		if err != nil {
			return objectstore.PresignedRequest{}, m.done(ctx, op, bucket, key, start, m.wrap(op, bucket, key, err), 0, nil)
		}
		finalURL = rewritten
	}

	metadata := map[string]interface{}{"expiry": expiry.String()}
	return objectstore.NewPresignedRequest(method, finalURL, expiry, nil), m.done(ctx, op, bucket, key, start, nil, 0, metadata)
}

// urlGenerator moves a presigned URL onto baseURL, keeping path and signed query.
// A path on baseURL is prepended, for proxies that mount the store under a prefix.
func urlGenerator(presignedURL *url.URL, baseURL string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	finalURL := *presignedURL
	finalURL.Scheme = base.Scheme
	finalURL.Host = base.Host
	if prefix := strings.TrimRight(base.Path, "/"); prefix != "" {
		finalURL.Path = prefix + presignedURL.Path
		if presignedURL.RawPath != "" {
			finalURL.RawPath = prefix + presignedURL.RawPath
		}
	}
	return finalURL.String(), nil
}
