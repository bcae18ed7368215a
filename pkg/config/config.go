package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Aleph-Alpha/objectstore/pkg/logger"
	"github.com/Aleph-Alpha/objectstore/pkg/metrics"
	"github.com/Aleph-Alpha/objectstore/pkg/minio"
	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
	"github.com/Aleph-Alpha/objectstore/pkg/s3"
	"github.com/Aleph-Alpha/objectstore/pkg/tracer"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. OBJECTSTORE_MINIO_STORE_ENDPOINT_URL.
	EnvPrefix = "OBJECTSTORE"

	// FileName is the optional YAML file looked up in the config directory.
	FileName = "objectstore"
)

// Config is the full configuration of the object store wiring.
type Config struct {
	// Enabled is the master switch. When false no backend is registered.
	Enabled bool `yaml:"enabled" mapstructure:"enabled" default:"true"`

	Logger  logger.Config  `yaml:"logger" mapstructure:"logger"`
	Metrics metrics.Config `yaml:"metrics" mapstructure:"metrics"`
	Tracer  tracer.Config  `yaml:"tracer" mapstructure:"tracer"`

	Minio minio.Config `yaml:"minio" mapstructure:"minio"`
	S3    s3.Config    `yaml:"s3" mapstructure:"s3"`
}

// Load reads the configuration from dir. Sources, lowest precedence first:
// struct defaults, dir/objectstore.yaml, dir/.env and the process environment.
// Missing files are skipped. The result is validated before it is returned.
func Load(dir string) (*Config, error) {
	// Load never overrides variables already present in the environment.
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: reading .env: %v", objectstore.ErrInvalidConfig, err)
	}

	v := viper.New()
	bindValues(v, Config{}, "")

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: reading %s.yaml: %v", objectstore.ErrInvalidConfig, FileName, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", objectstore.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every enabled backend. Disabled backends are not inspected.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	var errs []error
	if c.Minio.Enabled {
		if err := c.Minio.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("minio: %w", err))
		}
	}
	if c.S3.Enabled {
		if err := c.S3.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("s3: %w", err))
		}
	}
	return errors.Join(errs...)
}

// MinioEnabled reports whether the MinIO backend should be registered.
func (c Config) MinioEnabled() bool { return c.Enabled && c.Minio.Enabled }

// S3Enabled reports whether the S3 backend should be registered.
func (c Config) S3Enabled() bool { return c.Enabled && c.S3.Enabled }

// bindValues registers every mapstructure key with its default tag so that
// AutomaticEnv can resolve keys that appear in no file.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
