package minio

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
	"github.com/Aleph-Alpha/objectstore/pkg/observability"
)

const testBucket = "uploads"

func testConfig() Config {
	return Config{
		Store: objectstore.StoreConfig{
			EndpointURL:   "http://localhost:9000",
			AccessKey:     "minio_admin",
			SecretKey:     "minio_admin",
			DefaultBucket: testBucket,
		},
	}
}

// newTestClient returns a client backed by an in-memory fake. Debug and Info
// logging is always allowed; tests expecting failures add Error/Warn expectations.
func newTestClient(t *testing.T) (*MinioClient, *fakeAPI, *MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	api := newFakeAPI(testBucket)
	client, err := NewWithAPI(testConfig(), api, api, log, nil)
	require.NoError(t, err)
	return client, api, log
}

func allowFailures(log *MockLogger) {
	log.EXPECT().Error(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
}

// TestObserver records observed operations.
type TestObserver struct {
	mu         sync.Mutex
	operations []observability.OperationContext
}

func (t *TestObserver) ObserveOperation(ctx observability.OperationContext) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.operations = append(t.operations, ctx)
}

func (t *TestObserver) GetOperations() []observability.OperationContext {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]observability.OperationContext{}, t.operations...)
}
