package s3

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
	"github.com/Aleph-Alpha/objectstore/pkg/observability"
)

// FXModule provides *S3Client, also as an objectstore.Store named "s3".
var FXModule = fx.Module("s3",
	fx.Provide(
		NewClientWithDI,
		fx.Annotate(
			func(c *S3Client) objectstore.Store { return c },
			fx.ResultTags(`name:"s3"`),
		),
	),
	fx.Invoke(RegisterLifecycle),
)

// S3Params groups the dependencies of NewClientWithDI.
type S3Params struct {
	fx.In

	Config   Config
	Logger   Logger                   `optional:"true"`
	Observer observability.Observer   `optional:"true"`
	Registry objectstore.PartRegistry `optional:"true"`
}

// NewClientWithDI builds the client from the fx container.
func NewClientWithDI(params S3Params) (*S3Client, error) {
	client, err := NewClient(context.Background(), params.Config, params.Logger, params.Observer)
	if err != nil {
		return nil, err
	}
	return client.WithRegistry(params.Registry), nil
}

// RegisterLifecycle pings the store on start when ValidateOnStart is set.
func RegisterLifecycle(lc fx.Lifecycle, client *S3Client) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !client.cfg.ValidateOnStart {
				return nil
			}
			if err := client.Ping(ctx); err != nil {
				return err
			}
			client.logger.Info("S3 client started and healthy", nil, map[string]interface{}{
				"bucket": client.cfg.Store.DefaultBucket,
			})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			client.logger.Info("Closing S3 client", nil, map[string]interface{}{
				"pendingUploads": client.registry.Len(),
			})
			return nil
		},
	})
}
