package s3

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
)

// CreateBucket creates bucket in the configured region.
func (c *S3Client) CreateBucket(ctx context.Context, bucket string) error {
	if err := objectstore.ValidateBucket(bucket); err != nil {
		return err
	}
	start := time.Now()
	c.logger.Debug("Creating bucket", nil, map[string]interface{}{"bucket": bucket})

	_, err := c.api.CreateBucket(ctx, c.createBucketInput(bucket))
	return c.done(ctx, "createBucket", bucket, "", start, c.wrap("createBucket", bucket, "", err), 0, nil)
}

// createBucketInput omits the location constraint for us-east-1, which S3 rejects.
func (c *S3Client) createBucketInput(bucket string) *s3.CreateBucketInput {
	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	if region := c.cfg.Store.RegionOrDefault(); region != objectstore.DefaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	return input
}

func (c *S3Client) ListBuckets(ctx context.Context) ([]objectstore.BucketInfo, error) {
	start := time.Now()

	out, err := c.api.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, c.done(ctx, "listBuckets", "", "", start, c.wrap("listBuckets", "", "", err), 0, nil)
	}

	buckets := make([]objectstore.BucketInfo, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		buckets = append(buckets, objectstore.BucketInfo{
			Name:         aws.ToString(b.Name),
			CreationDate: aws.ToTime(b.CreationDate),
		})
	}
	return buckets, c.done(ctx, "listBuckets", "", "", start, nil, 0, nil)
}

// RemoveBucket removes an empty bucket.
func (c *S3Client) RemoveBucket(ctx context.Context, bucket string) error {
	if err := objectstore.ValidateBucket(bucket); err != nil {
		return err
	}
	start := time.Now()
	c.logger.Debug("Removing bucket", nil, map[string]interface{}{"bucket": bucket})

	_, err := c.api.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)})
	return c.done(ctx, "removeBucket", bucket, "", start, c.wrap("removeBucket", bucket, "", err), 0, nil)
}

// ListObjects lists every object under prefix, following continuation tokens.
func (c *S3Client) ListObjects(ctx context.Context, bucket, prefix string) ([]objectstore.ObjectInfo, error) {
	if err := objectstore.ValidateBucket(bucket); err != nil {
		return nil, err
	}
	start := time.Now()

	var objects []objectstore.ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, c.done(ctx, "listObjects", bucket, prefix, start, c.wrap("listObjects", bucket, prefix, err), 0, nil)
		}
		for _, obj := range page.Contents {
			objects = append(objects, objectstore.ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				ETag:         aws.ToString(obj.ETag),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return objects, c.done(ctx, "listObjects", bucket, prefix, start, nil, 0, map[string]interface{}{"count": len(objects)})
}
