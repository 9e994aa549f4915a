package logging

import (
	"log/slog"
	"os"
)

type LoggingService struct {
	Logger *slog.Logger
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger instance
func InitLogger(logDir string) {
	DefaultLoggingService = &LoggingService{
		Logger: SetupLogger(logDir),
	}
	slog.SetDefault(DefaultLoggingService.Logger)
}

// InitLoggerWithRetention initializes the global logger with a custom
// log retention period in weeks
func InitLoggerWithRetention(logDir string, retentionWeeks int) {
	DefaultLoggingService = &LoggingService{
		Logger: SetupLoggerWithRetention(logDir, retentionWeeks),
	}
	slog.SetDefault(DefaultLoggingService.Logger)
}

// active returns the configured logger, or a console fallback when logging
// has not been initialized yet (early startup, tests).
func active(level slog.Level) *slog.Logger {
	if DefaultLoggingService != nil && DefaultLoggingService.Logger != nil {
		return DefaultLoggingService.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	active(slog.LevelInfo).Info(msg, args...)
}

func Error(msg string, args ...any) {
	active(slog.LevelError).Error(msg, args...)
}

func Warn(msg string, args ...any) {
	active(slog.LevelWarn).Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	active(slog.LevelDebug).Debug(msg, args...)
}
