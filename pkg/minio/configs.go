package minio

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
)

const (
	// component identifies this adapter in errors, logs and observations.
	component = "minio"

	// DefaultPresignGetExpiry is used when PresignGet is called with a zero expiry.
	DefaultPresignGetExpiry = 30 * time.Minute

	// DefaultPresignPutExpiry is used when PresignPut is called with a zero expiry.
	DefaultPresignPutExpiry = 5 * time.Minute

	// MaxPresignExpiry is the longest validity SigV4 allows.
	MaxPresignExpiry = objectstore.MaxPresignExpiry

	// MinChunkSize is the smallest source, other than the last, ComposeObject accepts.
	MinChunkSize int64 = 5 * 1024 * 1024

	// maxComposeSources is the most sources a single ComposeObject call accepts.
	maxComposeSources = 10000

	defaultChunkConcurrency = 4
)

// Config is the configuration of one MinIO client.
type Config struct {
	// Enabled registers the client when wired through fx.
	Enabled bool `yaml:"enabled" mapstructure:"enabled" default:"true"`

	// Store holds endpoint, credentials and default bucket.
	Store objectstore.StoreConfig `yaml:"store" mapstructure:"store"`

	Presigned PresignedConfig `yaml:"presigned" mapstructure:"presigned"`

	Upload UploadConfig `yaml:"upload" mapstructure:"upload"`

	// AutoCreateBucket creates the default bucket during Ping when it is missing.
	AutoCreateBucket bool `yaml:"auto_create_bucket" mapstructure:"auto_create_bucket" default:"false"`

	// ValidateOnStart runs Ping from the fx start hook.
	ValidateOnStart bool `yaml:"validate_on_start" mapstructure:"validate_on_start" default:"false"`
}

// PresignedConfig holds the defaults for presigned URLs.
type PresignedConfig struct {
	GetExpiry time.Duration `yaml:"get_expiry" mapstructure:"get_expiry" default:"30m"`
	PutExpiry time.Duration `yaml:"put_expiry" mapstructure:"put_expiry" default:"5m"`

	// BaseURL replaces scheme and host of generated URLs, e.g. "https://cdn.example.com".
	BaseURL string `yaml:"base_url" mapstructure:"base_url" default:""`
}

// UploadConfig tunes streaming and chunked uploads.
type UploadConfig struct {
	// PartSize is the part size minio-go uses for streamed Put calls. 0 lets the SDK decide.
	PartSize uint64 `yaml:"part_size" mapstructure:"part_size" default:"5242880"`

	// ChunkSize is the chunk size UploadChunks uses when none is passed.
	ChunkSize int64 `yaml:"chunk_size" mapstructure:"chunk_size" default:"5242880"`

	// ChunkConcurrency is how many chunks UploadChunks sends at once when none is passed.
	ChunkConcurrency int `yaml:"chunk_concurrency" mapstructure:"chunk_concurrency" default:"4"`
}

// Validate reports missing or malformed settings. All failures wrap objectstore.ErrInvalidConfig.
func (c Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}
	for name, d := range map[string]time.Duration{
		"presigned.get_expiry": c.Presigned.GetExpiry,
		"presigned.put_expiry": c.Presigned.PutExpiry,
	} {
		if d < 0 || d > MaxPresignExpiry {
			return fmt.Errorf("%w: %s must be between 0 and %s, got %s", objectstore.ErrInvalidConfig, name, MaxPresignExpiry, d)
		}
	}
	if c.Presigned.BaseURL != "" {
		u, err := url.Parse(c.Presigned.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: presigned.base_url %q is not an absolute URL", objectstore.ErrInvalidConfig, c.Presigned.BaseURL)
		}
	}
	if c.Upload.ChunkSize != 0 && c.Upload.ChunkSize < MinChunkSize {
		return fmt.Errorf("%w: upload.chunk_size must be at least %d bytes", objectstore.ErrInvalidConfig, MinChunkSize)
	}
	if c.Upload.ChunkConcurrency < 0 {
		return fmt.Errorf("%w: upload.chunk_concurrency must not be negative", objectstore.ErrInvalidConfig)
	}
	return nil
}

func (c Config) getExpiry() time.Duration {
	if c.Presigned.GetExpiry > 0 {
		return c.Presigned.GetExpiry
	}
	return DefaultPresignGetExpiry
}

func (c Config) putExpiry() time.Duration {
	if c.Presigned.PutExpiry > 0 {
		return c.Presigned.PutExpiry
	}
	return DefaultPresignPutExpiry
}

func (c Config) chunkSize() int64 {
	if c.Upload.ChunkSize > 0 {
		return c.Upload.ChunkSize
	}
	return MinChunkSize
}

func (c Config) chunkConcurrency() int {
	if c.Upload.ChunkConcurrency > 0 {
		return c.Upload.ChunkConcurrency
	}
	return defaultChunkConcurrency
}
