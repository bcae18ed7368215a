package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
)

func setMinioEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OBJECTSTORE_MINIO_STORE_ENDPOINT_URL", "http://minio:9000")
	t.Setenv("OBJECTSTORE_MINIO_STORE_ACCESS_KEY", "minio_admin")
	t.Setenv("OBJECTSTORE_MINIO_STORE_SECRET_KEY", "minio_admin")
	t.Setenv("OBJECTSTORE_MINIO_STORE_DEFAULT_BUCKET", "uploads")
}

func TestLoad_DefaultsAndEnvironment(t *testing.T) {
	setMinioEnv(t)

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.MinioEnabled())
	assert.False(t, cfg.S3Enabled())
	assert.Equal(t, "http://minio:9000", cfg.Minio.Store.EndpointURL)
	assert.Equal(t, "uploads", cfg.Minio.Store.DefaultBucket)
	assert.Equal(t, 30*time.Minute, cfg.Minio.Presigned.GetExpiry)
	assert.Equal(t, 5*time.Minute, cfg.Minio.Presigned.PutExpiry)
	assert.Equal(t, int64(5*1024*1024), cfg.Minio.Upload.ChunkSize)
	assert.Equal(t, 4, cfg.Minio.Upload.ChunkConcurrency)
	assert.True(t, cfg.S3.ForcePathStyle)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, ":9090", cfg.Metrics.Address)
	assert.False(t, cfg.Tracer.Enabled)
}

func TestLoad_FailsFastOnIncompleteBackend(t *testing.T) {
	t.Setenv("OBJECTSTORE_MINIO_STORE_ENDPOINT_URL", "http://minio:9000")

	cfg, err := Load(t.TempDir())

	assert.Nil(t, cfg)
	require.ErrorIs(t, err, objectstore.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "minio")
	assert.Contains(t, err.Error(), "access_key")
}

func TestLoad_MasterSwitchSkipsValidation(t *testing.T) {
	t.Setenv("OBJECTSTORE_ENABLED", "false")

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.False(t, cfg.MinioEnabled())
	assert.False(t, cfg.S3Enabled())
}

func TestLoad_YAMLFileWithEnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := `
minio:
  enabled: false
s3:
  enabled: true
  force_path_style: false
  timeout: 15s
  store:
    endpoint_url: https://s3.eu-central-1.amazonaws.com
    access_key: AKIA
    secret_key: secret
    default_bucket: reports
    region: eu-central-1
  presigned:
    put_expiry: 10m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName+".yaml"), []byte(yaml), 0o600))
	t.Setenv("OBJECTSTORE_S3_STORE_DEFAULT_BUCKET", "override")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.False(t, cfg.MinioEnabled())
	require.True(t, cfg.S3Enabled())
	assert.Equal(t, "override", cfg.S3.Store.DefaultBucket)
	assert.Equal(t, "eu-central-1", cfg.S3.Store.Region)
	assert.False(t, cfg.S3.ForcePathStyle)
	assert.Equal(t, 15*time.Second, cfg.S3.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.S3.Presigned.PutExpiry)
	assert.Equal(t, 30*time.Minute, cfg.S3.Presigned.GetExpiry)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "OBJECTSTORE_MINIO_STORE_ENDPOINT_URL=http://from-dotenv:9000\n" +
		"OBJECTSTORE_MINIO_STORE_ACCESS_KEY=ak\n" +
		"OBJECTSTORE_MINIO_STORE_SECRET_KEY=sk\n" +
		"OBJECTSTORE_MINIO_STORE_DEFAULT_BUCKET=dotenv-bucket\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	t.Cleanup(func() {
		for _, key := range []string{
			"OBJECTSTORE_MINIO_STORE_ENDPOINT_URL",
			"OBJECTSTORE_MINIO_STORE_ACCESS_KEY",
			"OBJECTSTORE_MINIO_STORE_SECRET_KEY",
			"OBJECTSTORE_MINIO_STORE_DEFAULT_BUCKET",
		} {
			_ = os.Unsetenv(key)
		}
	})

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, "http://from-dotenv:9000", cfg.Minio.Store.EndpointURL)
	assert.Equal(t, "dotenv-bucket", cfg.Minio.Store.DefaultBucket)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName+".yaml"), []byte("minio: [unclosed"), 0o600))

	_, err := Load(dir)

	assert.ErrorIs(t, err, objectstore.ErrInvalidConfig)
}

func TestValidate_ReportsEveryEnabledBackend(t *testing.T) {
	cfg := Config{Enabled: true}
	cfg.Minio.Enabled = true
	cfg.S3.Enabled = true

	err := cfg.Validate()

	require.ErrorIs(t, err, objectstore.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "minio:")
	assert.Contains(t, err.Error(), "s3:")
}
