package minio

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
	"github.com/Aleph-Alpha/objectstore/pkg/observability"
)

// Logger is the logging surface the MinIO client needs.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=minio
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// MinioClient implements objectstore.Store on top of minio-go and adds the
// chunked-compose upload protocol.
//
// It holds no background goroutines and opens no connection until the first call.
type MinioClient struct {
	api  API
	core CoreAPI

	cfg        Config
	logger     Logger
	observer   observability.Observer
	registry   objectstore.PartRegistry
	bufferPool *objectstore.BufferPool
}

var _ objectstore.Store = (*MinioClient)(nil)

// NewClient validates cfg and builds the SDK clients. No network call is made;
// use Ping to check reachability.
//
//	client, err := minio.NewClient(cfg, log, nil)
//	if err != nil {
//	    return fmt.Errorf("failed to initialize MinIO client: %w", err)
//	}
func NewClient(cfg Config, logger Logger, observer observability.Observer) (*MinioClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	endpoint, err := objectstore.ParseEndpoint(cfg.Store.EndpointURL)
	if err != nil {
		return nil, err
	}

	// A fixed region keeps presigning free of bucket-location lookups.
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Store.AccessKey, cfg.Store.SecretKey, ""),
		Secure: endpoint.Secure,
		Region: cfg.Store.RegionOrDefault(),
	}

	client, err := minio.New(endpoint.Host, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", objectstore.ErrInvalidConfig, err)
	}
	core, err := minio.NewCore(endpoint.Host, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", objectstore.ErrInvalidConfig, err)
	}

	m := newClient(cfg, sdkAPI{client}, core, logger, observer)
	m.logger.Info("MinIO client configured", nil, map[string]interface{}{
		"endpoint": endpoint.URL,
		"secure":   endpoint.Secure,
		"bucket":   cfg.Store.DefaultBucket,
	})
	return m, nil
}

// NewWithAPI builds a client on caller supplied SDK implementations.
func NewWithAPI(cfg Config, api API, core CoreAPI, logger Logger, observer observability.Observer) (*MinioClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newClient(cfg, api, core, logger, observer), nil
}

func newClient(cfg Config, api API, core CoreAPI, logger Logger, observer observability.Observer) *MinioClient {
	if logger == nil {
		logger = nopLogger{}
	}
	return &MinioClient{
		api:        api,
		core:       core,
		cfg:        cfg,
		logger:     logger,
		observer:   observer,
		registry:   objectstore.NewMemoryRegistry(),
		bufferPool: objectstore.NewBufferPool(),
	}
}

// WithObserver sets the observer notified after every operation.
func (m *MinioClient) WithObserver(observer observability.Observer) *MinioClient {
	m.observer = observer
	return m
}

// WithRegistry replaces the part registry, e.g. to share one between clients.
func (m *MinioClient) WithRegistry(registry objectstore.PartRegistry) *MinioClient {
	if registry != nil {
		m.registry = registry
	}
	return m
}

// DefaultBucket returns the configured default bucket.
func (m *MinioClient) DefaultBucket() string {
	return m.cfg.Store.DefaultBucket
}

// Ping checks that the default bucket is reachable. With AutoCreateBucket a
// missing bucket is created.
func (m *MinioClient) Ping(ctx context.Context) error {
	bucket := m.cfg.Store.DefaultBucket
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := m.api.BucketExists(ctx, bucket)
	if err != nil {
		return m.done(ctx, "ping", bucket, "", start, m.wrap("ping", bucket, "", err), 0, nil)
	}
	if exists {
		return m.done(ctx, "ping", bucket, "", start, nil, 0, nil)
	}

	if !m.cfg.AutoCreateBucket {
		err = fmt.Errorf("%w: default bucket %q does not exist", objectstore.ErrInvalidConfig, bucket)
		return m.done(ctx, "ping", bucket, "", start, err, 0, nil)
	}

	m.logger.Info("Bucket does not exist, creating it", nil, map[string]interface{}{
		"bucket": bucket,
	})
	if err := m.api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: m.cfg.Store.RegionOrDefault()}); err != nil {
		return m.done(ctx, "ping", bucket, "", start, m.wrap("ping", bucket, "", err), 0, nil)
	}
	return m.done(ctx, "ping", bucket, "", start, nil, 0, map[string]interface{}{"created": true})
}

// wrap attaches the operation context to an SDK error.
func (m *MinioClient) wrap(op, bucket, key string, err error) error {
	if err == nil {
		return nil
	}
	return objectstore.NewOperationError(component, op, bucket, key, err)
}

// done reports a finished operation to the observer, logs failures and returns err.
func (m *MinioClient) done(ctx context.Context, op, bucket, key string, start time.Time, err error, size int64, metadata map[string]interface{}) error {
	m.observeOperation(ctx, op, bucket, key, start, err, size, metadata)
	if err != nil {
		fields := map[string]interface{}{"operation": op, "bucket": bucket}
		if key != "" {
			fields["key"] = key
		}
		for k, v := range metadata {
			fields[k] = v
		}
		m.logger.Error("MinIO operation failed", err, fields)
	}
	return err
}

type nopLogger struct{}

func (nopLogger) Info(string, error, ...map[string]interface{})  {}
func (nopLogger) Debug(string, error, ...map[string]interface{}) {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}
func (nopLogger) Fatal(string, error, ...map[string]interface{}) {}
