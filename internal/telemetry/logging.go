package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogOptions — параметры логгера.
type LogOptions struct {
	// Level — DEBUG, INFO, WARN, ERROR (регистр не важен). По умолчанию INFO.
	Level string

	// Format — "json" (по умолчанию) или "text".
	Format string

	// Output — куда писать. По умолчанию os.Stdout.
	Output io.Writer
}

// LogOptionsFromEnv читает LOG_LEVEL и LOG_FORMAT.
func LogOptionsFromEnv() LogOptions {
	return LogOptions{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	}
}

// ParseLevel переводит строку в уровень slog.
// Неизвестные значения дают INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger создаёт логгер по опциям, не трогая глобальный.
func NewLogger(opts LogOptions) *slog.Logger {
	level := ParseLevel(opts.Level)

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	hopts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		handler = slog.NewTextHandler(out, hopts)
	} else {
		handler = slog.NewJSONHandler(out, hopts)
	}

	return slog.New(handler)
}

// SetupLogger создаёт логгер и делает его глобальным.
func SetupLogger(opts LogOptions) *slog.Logger {
	logger := NewLogger(opts)
	slog.SetDefault(logger)
	return logger
}

// Ключи контекста для передачи данных в логгер.
type ctxKey string

const (
	// CtxLogger — ключ для логгера в контексте.
	CtxLogger ctxKey = "logger"
)

// WithLogger добавляет логгер в контекст.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, CtxLogger, logger)
}

// FromContext извлекает логгер из контекста.
// Если логгер не найден, возвращает глобальный.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(CtxLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithRunID возвращает логгер с добавленным run_id.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With("run_id", runID)
}

// WithFileName возвращает логгер с добавленным file.
func WithFileName(logger *slog.Logger, fileName string) *slog.Logger {
	return logger.With("file", fileName)
}
