package memo

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger defines the interface for engine logging.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F is a convenience function to create a logging field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// ZapLogger implements Logger on top of a zap.Logger.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger}
}

// NewDefaultLogger creates a production zap logger named "memo". It falls
// back to a no-op zap core when zap cannot build one.
func NewDefaultLogger() Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger.Named("memo")}
}

func (zl *ZapLogger) Debug(msg string, fields ...Field) {
	zl.logger.Debug(msg, zapFields(fields)...)
}

func (zl *ZapLogger) Info(msg string, fields ...Field) {
	zl.logger.Info(msg, zapFields(fields)...)
}

func (zl *ZapLogger) Warn(msg string, fields ...Field) {
	zl.logger.Warn(msg, zapFields(fields)...)
}

func (zl *ZapLogger) Error(msg string, fields ...Field) {
	zl.logger.Error(msg, zapFields(fields)...)
}

// With creates a new logger with additional fields.
func (zl *ZapLogger) With(fields ...Field) Logger {
	return &ZapLogger{logger: zl.logger.With(zapFields(fields)...)}
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, field := range fields {
		out[i] = zap.Any(field.Key, field.Value)
	}
	return out
}

// NoOpLogger is a logger that does nothing, useful for disabling logging.
type NoOpLogger struct{}

// NewNoOpLogger creates a logger that discards all messages.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (nol *NoOpLogger) Debug(string, ...Field) {}
func (nol *NoOpLogger) Info(string, ...Field)  {}
func (nol *NoOpLogger) Warn(string, ...Field)  {}
func (nol *NoOpLogger) Error(string, ...Field) {}
func (nol *NoOpLogger) With(...Field) Logger   { return nol }

// LoggingConfig defines configuration for engine event logging.
type LoggingConfig struct {
	Logger Logger

	// LogHits enables logging of cache hit events.
	LogHits bool

	// LogMisses enables logging of cache miss events.
	LogMisses bool

	// LogInvalidations enables logging of invalidation events.
	LogInvalidations bool

	// LogTeardowns enables logging of teardown events.
	LogTeardowns bool

	// IncludeValues determines whether to include cached values in logs.
	IncludeValues bool

	// MaxValueLength limits the length of values included in logs.
	MaxValueLength int
}

// NewDefaultLoggingConfig creates a logging configuration that logs all
// engine events through the given logger.
func NewDefaultLoggingConfig(logger Logger) *LoggingConfig {
	return &LoggingConfig{
		Logger:           logger,
		LogHits:          true,
		LogMisses:        true,
		LogInvalidations: true,
		LogTeardowns:     true,
		IncludeValues:    false,
		MaxValueLength:   100,
	}
}

// CreateLoggingHooks creates a set of hooks that implement engine event
// logging.
func CreateLoggingHooks(config *LoggingConfig) *Hooks {
	if config == nil || config.Logger == nil {
		return &Hooks{}
	}

	hooks := &Hooks{}
	logger := config.Logger

	if config.LogHits {
		hooks.AddOnHit(func(key string, value any) {
			fields := []Field{F("key", key), F("event", "hit")}
			if config.IncludeValues {
				fields = append(fields, F("value", truncateValue(fmt.Sprintf("%v", value), config.MaxValueLength)))
			}
			logger.Debug("cache hit", fields...)
		})
	}

	if config.LogMisses {
		hooks.AddOnMiss(func(key string) {
			logger.Debug("cache miss", F("key", key), F("event", "miss"))
		})
	}

	if config.LogInvalidations {
		hooks.AddOnInvalidate(func(key string) {
			logger.Info("slot invalidated", F("key", key), F("event", "invalidate"))
		})
	}

	if config.LogTeardowns {
		hooks.AddOnTeardown(func(owner string) {
			logger.Info("instance torn down", F("owner", owner), F("event", "teardown"))
		})
	}

	return hooks
}

func truncateValue(value string, maxLength int) string {
	if maxLength <= 3 || len(value) <= maxLength {
		return value
	}
	return value[:maxLength-3] + "..."
}
