package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
)

const localstackImage = "localstack/localstack:3.8"

// startLocalStack returns a client against a fresh LocalStack container with
// its default bucket created.
func startLocalStack(t *testing.T) *S3Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping LocalStack integration test in short mode")
	}
	ctx := context.Background()

	containerInstance, err := localstack.Run(ctx, localstackImage,
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/_localstack/health").WithPort("4566/tcp").WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = containerInstance.Terminate(context.Background()) })

	host, err := containerInstance.Host(ctx)
	require.NoError(t, err)
	port, err := containerInstance.MappedPort(ctx, "4566/tcp")
	require.NoError(t, err)

	cfg := Config{
		Enabled: true,
		Store: objectstore.StoreConfig{
			EndpointURL:   fmt.Sprintf("http://%s:%s", host, port.Port()),
			AccessKey:     "test",
			SecretKey:     "test",
			DefaultBucket: "integration",
		},
		ForcePathStyle:   true,
		AutoCreateBucket: true,
	}
	client, err := NewClient(ctx, cfg, nil, nil)
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx))
	return client
}

func TestIntegration_ObjectLifecycle(t *testing.T) {
	client := startLocalStack(t)
	ctx := context.Background()
	bucket := client.DefaultBucket()

	_, err := client.Put(ctx, bucket, "a/b.txt", strings.NewReader("hello"), 5)
	require.NoError(t, err)

	objects, err := client.ListObjects(ctx, bucket, "a/")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "a/b.txt", objects[0].Key)

	reader, err := client.Get(ctx, bucket, "a/b.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	_ = reader.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, client.Delete(ctx, bucket, "a/b.txt"))
	_, err = client.Get(ctx, bucket, "a/b.txt")
	assert.ErrorIs(t, err, objectstore.ErrOperationFailed)
}

func TestIntegration_NativeMultipart(t *testing.T) {
	client := startLocalStack(t)
	ctx := context.Background()
	bucket := client.DefaultBucket()

	id, err := client.BeginMultipart(ctx, bucket, "big.bin")
	require.NoError(t, err)

	first := bytes.Repeat([]byte{'x'}, 5*1024*1024)
	_, err = client.UploadPart(ctx, bucket, "big.bin", id, bytes.NewReader(first), int64(len(first)))
	require.NoError(t, err)
	_, err = client.UploadPart(ctx, bucket, "big.bin", id, strings.NewReader("tail"), -1)
	require.NoError(t, err)

	info, err := client.CompleteMultipart(ctx, bucket, "big.bin", id)
	require.NoError(t, err)
	assert.Equal(t, int64(len(first)+4), info.Size)

	objects, err := client.ListObjects(ctx, bucket, "big.bin")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, int64(len(first)+4), objects[0].Size)
}

func TestIntegration_PresignedPutThenGet(t *testing.T) {
	client := startLocalStack(t)
	ctx := context.Background()
	bucket := client.DefaultBucket()

	put, err := client.PresignPut(ctx, bucket, "signed.txt", 0)
	require.NoError(t, err)
	req, err := http.NewRequestWithContext(ctx, put.Method, put.URL, strings.NewReader("signed body"))
	require.NoError(t, err)
	for name, values := range put.SignedHeaders {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	get, err := client.PresignGet(ctx, bucket, "signed.txt", time.Minute)
	require.NoError(t, err)
	resp, err = http.Get(get.URL)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "signed body", string(body))
}
