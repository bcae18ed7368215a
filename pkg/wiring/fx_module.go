package wiring

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/objectstore/pkg/config"
	"github.com/Aleph-Alpha/objectstore/pkg/logger"
	"github.com/Aleph-Alpha/objectstore/pkg/metrics"
	"github.com/Aleph-Alpha/objectstore/pkg/minio"
	"github.com/Aleph-Alpha/objectstore/pkg/objectstore"
	"github.com/Aleph-Alpha/objectstore/pkg/observability"
	"github.com/Aleph-Alpha/objectstore/pkg/s3"
	"github.com/Aleph-Alpha/objectstore/pkg/tracer"
)

// FXModule assembles the logger, metrics, tracer and every enabled storage
// backend from one loaded Config.
//
// Enabled backends are provided as objectstore.Store named "minio" and "s3".
// They share a single PartRegistry.
func FXModule(cfg config.Config) fx.Option {
	options := []fx.Option{
		fx.Supply(cfg.Logger, cfg.Metrics, cfg.Tracer),
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		fx.Provide(
			func(l *logger.Logger) tracer.Logger { return l },
			NewObserver,
			NewRegistry,
		),
	}

	if cfg.MinioEnabled() {
		options = append(options,
			fx.Supply(cfg.Minio),
			fx.Provide(func(l *logger.Logger) minio.Logger { return l }),
			minio.FXModule,
		)
	}
	if cfg.S3Enabled() {
		options = append(options,
			fx.Supply(cfg.S3),
			fx.Provide(func(l *logger.Logger) s3.Logger { return l }),
			s3.FXModule,
		)
	}

	return fx.Module("objectstore", options...)
}

// ObserverParams groups the observers NewObserver can combine.
type ObserverParams struct {
	fx.In

	TracerConfig tracer.Config
	Metrics      *metrics.Metrics
	Tracer       *tracer.Tracer
}

// NewObserver feeds every operation to the metrics, and to the tracer when it is enabled.
func NewObserver(p ObserverParams) observability.Observer {
	if !p.TracerConfig.Enabled {
		return p.Metrics
	}
	return observability.Compose(p.Metrics, p.Tracer)
}

// NewRegistry returns the process-local registry shared by all backends.
func NewRegistry() objectstore.PartRegistry {
	return objectstore.NewMemoryRegistry()
}
