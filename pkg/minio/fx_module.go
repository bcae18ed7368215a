package minio

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
	"github.com/Aleph-Alpha/objectstore/pkg/observability"
)

// FXModule provides *MinioClient, also as an objectstore.Store named "minio".
// It needs a Config in the container.
var FXModule = fx.Module("minio",
	fx.Provide(
		NewClientWithDI,
		fx.Annotate(
			func(c *MinioClient) objectstore.Store { return c },
			fx.ResultTags(`name:"minio"`),
		),
	),
	fx.Invoke(RegisterLifecycle),
)

// MinioParams groups the dependencies of NewClientWithDI.
type MinioParams struct {
	fx.In

	Config   Config
	Logger   Logger                   `optional:"true"`
	Observer observability.Observer   `optional:"true"`
	Registry objectstore.PartRegistry `optional:"true"`
}

// NewClientWithDI builds the client from the fx container.
func NewClientWithDI(params MinioParams) (*MinioClient, error) {
	client, err := NewClient(params.Config, params.Logger, params.Observer)
	if err != nil {
		return nil, err
	}
	return client.WithRegistry(params.Registry), nil
}

// RegisterLifecycle pings the store on start when ValidateOnStart is set.
func RegisterLifecycle(lc fx.Lifecycle, client *MinioClient) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !client.cfg.ValidateOnStart {
				return nil
			}
			if err := client.Ping(ctx); err != nil {
				return err
			}
			client.logger.Info("MinIO client started and healthy", nil, map[string]interface{}{
				"bucket": client.cfg.Store.DefaultBucket,
			})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			client.logger.Info("Closing MinIO client", nil, map[string]interface{}{
				"pendingUploads": client.registry.Len(),
			})
			return nil
		},
	})
}
