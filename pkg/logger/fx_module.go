package logger

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides *Logger from a Config already present in the container.
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle flushes buffered entries on shutdown.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync on stderr fails with EINVAL on Linux; there is nothing left to flush then.
			_ = client.Zap.Sync()
			return nil
		},
	})
}
