// Package logger provides the structured logger used across the object store
// clients.
//
// It wraps go.uber.org/zap with a (message, error, fields) call shape so that
// client packages can depend on a small interface instead of zap itself:
//
//	log := logger.NewLoggerClient(logger.Config{Level: "debug", ServiceName: "uploads"})
//	log.Info("bucket created", nil, map[string]interface{}{"bucket": "docs"})
//	log.Error("put failed", err, map[string]interface{}{"bucket": "docs", "key": "a.txt"})
//
// Entries are JSON on stderr with ISO8601 timestamps and carry the "service"
// and "pid" fields.
//
// FXModule provides *Logger from a Config in the container and syncs it on stop.
package logger
