package ports

import "context"

// Fields carries structured key/value context for a log entry.
type Fields map[string]any

// Logger is the logging contract shared by every adapter and service.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Fields)
	Info(ctx context.Context, msg string, fields ...Fields)
	Warn(ctx context.Context, msg string, fields ...Fields)
	// Error logs err together with msg at Error level.
	Error(ctx context.Context, err error, msg string, fields ...Fields)
}
