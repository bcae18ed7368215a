package s3

import (
	"fmt"
	"time"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
)

const (
	// component identifies this adapter in errors, logs and observations.
	component = "s3"

	// DefaultPresignGetExpiry is used when PresignGet is called with a zero expiry.
	DefaultPresignGetExpiry = 30 * time.Minute

	// DefaultPresignPutExpiry is used when PresignPut is called with a zero expiry.
	DefaultPresignPutExpiry = 5 * time.Minute
)

// Config is the configuration of one S3 client.
type Config struct {
	// Enabled registers the client when wired through fx.
	Enabled bool `yaml:"enabled" mapstructure:"enabled" default:"false"`

	Store objectstore.StoreConfig `yaml:"store" mapstructure:"store"`

	// ForcePathStyle addresses buckets as "/bucket/key" instead of "bucket.host".
	// Most S3-compatible stores need it.
	ForcePathStyle bool `yaml:"force_path_style" mapstructure:"force_path_style" default:"true"`

	Presigned PresignedConfig `yaml:"presigned" mapstructure:"presigned"`

	// Timeout bounds every HTTP request. Zero means no client-side timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" default:"0s"`

	AutoCreateBucket bool `yaml:"auto_create_bucket" mapstructure:"auto_create_bucket" default:"false"`
	ValidateOnStart  bool `yaml:"validate_on_start" mapstructure:"validate_on_start" default:"false"`
}

// PresignedConfig holds the default presigned URL lifetimes.
type PresignedConfig struct {
	GetExpiry time.Duration `yaml:"get_expiry" mapstructure:"get_expiry" default:"30m"`
	PutExpiry time.Duration `yaml:"put_expiry" mapstructure:"put_expiry" default:"5m"`
}

// Validate reports missing or malformed settings. All failures wrap objectstore.ErrInvalidConfig.
func (c Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if c.Presigned.GetExpiry < 0 || c.Presigned.GetExpiry > objectstore.MaxPresignExpiry {
		return fmt.Errorf("%w: presigned.get_expiry must be between 0 and %s", objectstore.ErrInvalidConfig, objectstore.MaxPresignExpiry)
	}
	if c.Presigned.PutExpiry < 0 || c.Presigned.PutExpiry > objectstore.MaxPresignExpiry {
		return fmt.Errorf("%w: presigned.put_expiry must be between 0 and %s", objectstore.ErrInvalidConfig, objectstore.MaxPresignExpiry)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", objectstore.ErrInvalidConfig)
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
