package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
	"github.com/Aleph-Alpha/objectstore/pkg/observability"
)

// Logger is the logging surface the S3 client needs.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=s3
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// S3Client implements objectstore.Store on top of aws-sdk-go-v2.
type S3Client struct {
	api     S3API
	presign PresignAPI

	cfg        Config
	logger     Logger
	observer   observability.Observer
	registry   objectstore.PartRegistry
	bufferPool *objectstore.BufferPool
}

var _ objectstore.Store = (*S3Client)(nil)

// NewClient validates cfg and builds the SDK clients. Credentials come from cfg
// only; the ambient AWS credential chain is not consulted.
func NewClient(ctx context.Context, cfg Config, logger Logger, observer observability.Observer) (*S3Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	endpoint, err := objectstore.ParseEndpoint(cfg.Store.EndpointURL)
	if err != nil {
		return nil, err
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Store.RegionOrDefault()),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.Store.AccessKey, cfg.Store.SecretKey, "")),
	}
	if cfg.Timeout > 0 {
		loadOpts = append(loadOpts, config.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", objectstore.ErrInvalidConfig, err)
	}
	// S3-compatible stores often reject the SDK's default trailing checksums.
	awsCfg.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	awsCfg.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint.URL)
		o.UsePathStyle = cfg.ForcePathStyle
	})

	c := newClient(cfg, client, s3.NewPresignClient(client), logger, observer)
	c.logger.Info("S3 client configured", nil, map[string]interface{}{
		"endpoint":  endpoint.URL,
		"region":    cfg.Store.RegionOrDefault(),
		"pathStyle": cfg.ForcePathStyle,
		"bucket":    cfg.Store.DefaultBucket,
	})
	return c, nil
}

// NewWithAPI builds a client on caller supplied SDK implementations.
func NewWithAPI(cfg Config, api S3API, presign PresignAPI, logger Logger, observer observability.Observer) (*S3Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newClient(cfg, api, presign, logger, observer), nil
}

func newClient(cfg Config, api S3API, presign PresignAPI, logger Logger, observer observability.Observer) *S3Client {
	if logger == nil {
		logger = nopLogger{}
	}
	return &S3Client{
		api:        api,
		presign:    presign,
		cfg:        cfg,
		logger:     logger,
		observer:   observer,
		registry:   objectstore.NewMemoryRegistry(),
		bufferPool: objectstore.NewBufferPool(),
	}
}

// WithObserver sets the observer notified after every operation.
func (c *S3Client) WithObserver(observer observability.Observer) *S3Client {
	c.observer = observer
	return c
}

// WithRegistry replaces the part registry.
func (c *S3Client) WithRegistry(registry objectstore.PartRegistry) *S3Client {
	if registry != nil {
		c.registry = registry
	}
	return c
}

func (c *S3Client) DefaultBucket() string {
	return c.cfg.Store.DefaultBucket
}

// Ping checks that the default bucket is reachable, creating it when
// AutoCreateBucket is set.
func (c *S3Client) Ping(ctx context.Context) error {
	bucket := c.cfg.Store.DefaultBucket
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return c.done(ctx, "ping", bucket, "", start, nil, 0, nil)
	}
	if !isNotFound(err) {
		return c.done(ctx, "ping", bucket, "", start, c.wrap("ping", bucket, "", err), 0, nil)
	}
	if !c.cfg.AutoCreateBucket {
		err = fmt.Errorf("%w: default bucket %q does not exist", objectstore.ErrInvalidConfig, bucket)
		return c.done(ctx, "ping", bucket, "", start, err, 0, nil)
	}

	c.logger.Info("Bucket does not exist, creating it", nil, map[string]interface{}{"bucket": bucket})
	if _, err := c.api.CreateBucket(ctx, c.createBucketInput(bucket)); err != nil {
		return c.done(ctx, "ping", bucket, "", start, c.wrap("ping", bucket, "", err), 0, nil)
	}
	return c.done(ctx, "ping", bucket, "", start, nil, 0, map[string]interface{}{"created": true})
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &notFound) || errors.As(err, &noSuchBucket) {
		return true
	}
	code := errorCode(err)
	return code == "NotFound" || code == "NoSuchBucket"
}

// errorCode returns the service error code, or "" for transport failures.
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func (c *S3Client) wrap(op, bucket, key string, err error) error {
	if err == nil {
		return nil
	}
	return objectstore.NewOperationError(component, op, bucket, key, err)
}

// done reports a finished operation to the observer, logs failures and returns err.
func (c *S3Client) done(ctx context.Context, op, bucket, key string, start time.Time, err error, size int64, metadata map[string]interface{}) error {
	c.observeOperation(ctx, op, bucket, key, start, err, size, metadata)
	if err != nil {
		fields := map[string]interface{}{"operation": op, "bucket": bucket}
		if key != "" {
			fields["key"] = key
		}
		if code := errorCode(err); code != "" {
			fields["code"] = code
		}
		for k, v := range metadata {
			fields[k] = v
		}
		c.logger.Error("S3 operation failed", err, fields)
	}
	return err
}

type nopLogger struct{}

func (nopLogger) Info(string, error, ...map[string]interface{})  {}
func (nopLogger) Debug(string, error, ...map[string]interface{}) {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}
func (nopLogger) Fatal(string, error, ...map[string]interface{}) {}
