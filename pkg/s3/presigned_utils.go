package s3

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
)

// PresignGet returns a GET URL valid for expiry, or Presigned.GetExpiry when expiry is zero.
func (c *S3Client) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (objectstore.PresignedRequest, error) {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return objectstore.PresignedRequest{}, err
	}
	expiry, err := objectstore.ResolveExpiry(expiry, c.cfg.getExpiry())
	if err != nil {
		return objectstore.PresignedRequest{}, err
	}
	start := time.Now()

	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	return c.presigned(ctx, http.MethodGet, "presignGet", bucket, key, start, req, expiry, err)
}

// PresignPut returns a PUT URL valid for expiry, or Presigned.PutExpiry when expiry is zero.
func (c *S3Client) PresignPut(ctx context.Context, bucket, key string, expiry time.Duration) (objectstore.PresignedRequest, error) {
	if err := objectstore.ValidateKey(bucket, key); err != nil {
		return objectstore.PresignedRequest{}, err
	}
	expiry, err := objectstore.ResolveExpiry(expiry, c.cfg.putExpiry())
	if err != nil {
		return objectstore.PresignedRequest{}, err
	}
	start := time.Now()

	req, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	return c.presigned(ctx, http.MethodPut, "presignPut", bucket, key, start, req, expiry, err)
}

func (c *S3Client) presigned(ctx context.Context, method, op, bucket, key string, start time.Time, req *v4.PresignedHTTPRequest, expiry time.Duration, err error) (objectstore.PresignedRequest, error) {
	if err != nil {
		return objectstore.PresignedRequest{}, c.done(ctx, op, bucket, key, start, c.wrap(op, bucket, key, err), 0, nil)
	}
	if req.Method != "" {
		method = req.Method
	}

	// Host is implied by the URL and must not be sent as an extra header.
	headers := req.SignedHeader.Clone()
	headers.Del("Host")

	metadata := map[string]interface{}{"expiry": expiry.String()}
	return objectstore.NewPresignedRequest(method, req.URL, expiry, headers), c.done(ctx, op, bucket, key, start, nil, 0, metadata)
}
