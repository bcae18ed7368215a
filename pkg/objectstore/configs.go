package objectstore

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultRegion is used by backends that need a region when none is configured.
const DefaultRegion = "us-east-1"

// StoreConfig holds the connection settings shared by every backend.
// One instance belongs to exactly one client and is not modified after construction.
type StoreConfig struct {
	// EndpointURL is the base URL of the object store, e.g. "http://localhost:9000".
	// A value without scheme is treated as plain http.
	EndpointURL string `yaml:"endpoint_url" mapstructure:"endpoint_url" default:""`

	// AccessKey is the access key id used to sign requests.
	AccessKey string `yaml:"access_key" mapstructure:"access_key" default:""`

	// SecretKey is the secret paired with AccessKey.
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key" default:""`

	// DefaultBucket is the bucket used by the bucket-less convenience calls.
	DefaultBucket string `yaml:"default_bucket" mapstructure:"default_bucket" default:""`

	// Region is optional; MinIO ignores it, S3 falls back to DefaultRegion.
	Region string `yaml:"region" mapstructure:"region" default:""`
}

// Validate checks that every required field is present and the endpoint parses.
// All failures wrap ErrInvalidConfig.
func (c StoreConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.EndpointURL) == "" {
		missing = append(missing, "endpoint_url")
	}
	if c.AccessKey == "" {
		missing = append(missing, "access_key")
	}
	if c.SecretKey == "" {
		missing = append(missing, "secret_key")
	}
	if strings.TrimSpace(c.DefaultBucket) == "" {
		missing = append(missing, "default_bucket")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}

	if _, err := ParseEndpoint(c.EndpointURL); err != nil {
		return err
	}
	return nil
}

// RegionOrDefault returns Region, or DefaultRegion when it is empty.
func (c StoreConfig) RegionOrDefault() string {
	if c.Region == "" {
		return DefaultRegion
	}
	return c.Region
}

// Endpoint is a parsed EndpointURL.
type Endpoint struct {
	// Host is host[:port] without scheme, the form minio-go expects.
	Host string
	// Secure is true for https endpoints.
	Secure bool
	// URL is the normalised endpoint including scheme, the form the AWS SDK expects.
	URL string
}

// ParseEndpoint splits an endpoint URL into the pieces the SDKs need.
func ParseEndpoint(raw string) (Endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Endpoint{}, fmt.Errorf("%w: endpoint is empty", ErrInvalidConfig)
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: invalid endpoint %q: %v", ErrInvalidConfig, raw, err)
	}

	switch u.Scheme {
	case "http", "https":
	default:
		return Endpoint{}, fmt.Errorf("%w: unsupported endpoint scheme %q", ErrInvalidConfig, u.Scheme)
	}
	if u.Host == "" {
		return Endpoint{}, fmt.Errorf("%w: endpoint %q has no host", ErrInvalidConfig, raw)
	}
	if u.Path != "" && u.Path != "/" {
		return Endpoint{}, fmt.Errorf("%w: endpoint %q must not contain a path", ErrInvalidConfig, raw)
	}

	return Endpoint{
		Host:   u.Host,
		Secure: u.Scheme == "https",
		URL:    u.Scheme + "://" + u.Host,
	}, nil
}
