package logger

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tradeJournal/internal/ports"
)

// ZapLogger implements the ports.Logger interface on top of zap.
type ZapLogger struct {
	logger *zap.Logger
}

// LogLevel defines the logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string level to LogLevel.
func ParseLevel(levelStr string) LogLevel {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo // Default to Info
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Config selects the level and encoding of the logger.
type Config struct {
	Level  LogLevel
	Format string // "json" or "console"
}

// New builds a ZapLogger writing to stderr.
func New(cfg Config) (*ZapLogger, error) {
	zc := zap.NewProductionConfig()
	if strings.EqualFold(cfg.Format, "console") {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.Level = zap.NewAtomicLevelAt(cfg.Level.zapLevel())
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &ZapLogger{logger: z}, nil
}

// NewFromZap wraps an existing zap logger.
func NewFromZap(z *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: z}
}

// Nop returns a logger that discards everything.
func Nop() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop()}
}

// Sync flushes any buffered log entries.
func (l *ZapLogger) Sync() error {
	if l.logger != nil {
		return l.logger.Sync()
	}
	return nil
}

// toZapFields flattens the fields maps in key order so output is stable.
func toZapFields(fields []ports.Fields) []zap.Field {
	var out []zap.Field
	for _, f := range fields {
		keys := make([]string, 0, len(f))
		for k := range f {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, zap.Any(k, f[k]))
		}
	}
	return out
}

// Debug logs a message at Debug level.
func (l *ZapLogger) Debug(_ context.Context, msg string, fields ...ports.Fields) {
	l.logger.Debug(msg, toZapFields(fields)...)
}

// Info logs a message at Info level.
func (l *ZapLogger) Info(_ context.Context, msg string, fields ...ports.Fields) {
	l.logger.Info(msg, toZapFields(fields)...)
}

// Warn logs a message at Warning level.
func (l *ZapLogger) Warn(_ context.Context, msg string, fields ...ports.Fields) {
	l.logger.Warn(msg, toZapFields(fields)...)
}

// Error logs an error message at Error level.
func (l *ZapLogger) Error(_ context.Context, err error, msg string, fields ...ports.Fields) {
	zf := toZapFields(fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	l.logger.Error(msg, zf...)
}

var _ ports.Logger = (*ZapLogger)(nil)
