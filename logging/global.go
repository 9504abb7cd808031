package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/MolecularAI/smartsrx/config"
)

// DefaultMaxFileSize is the log file size that starts a continuation file.
const DefaultMaxFileSize = 100 * 1024 * 1024

// LoggingService owns the process logger and the rotating file behind it.
type LoggingService struct {
	Logger *slog.Logger
	file   *RotatingLogger
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger with an info console level.
func InitLogger(logDir string) {
	InitLoggerWithLevel(logDir, slog.LevelInfo, 4)
}

// InitLoggerWithLevel initializes the global logger. An empty logDir logs to
// the console only.
func InitLoggerWithLevel(logDir string, consoleLevel slog.Level, retentionWeeks int) {
	install(setupLogger(logDir, consoleLevel, retentionWeeks, DefaultMaxFileSize, os.Stderr))
}

// InitLoggerFromConfig initializes the global logger from the application
// configuration. verbose raises the console level in the test environment.
func InitLoggerFromConfig(cfg *config.Config, verbose bool) {
	level := GetConsoleLogLevel(cfg.Env, cfg.LogLevel, verbose)
	maxSize := cfg.MaxLogFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	install(setupLogger(cfg.LogDir, level, cfg.LogRetentionWeeks, maxSize, os.Stderr))
}

func install(logger *slog.Logger, file *RotatingLogger) {
	if DefaultLoggingService != nil && DefaultLoggingService.file != nil {
		DefaultLoggingService.file.Close()
	}
	DefaultLoggingService = &LoggingService{
		Logger: logger,
		file:   file,
	}
	slog.SetDefault(logger)
}

// Close releases the log file, if any.
func Close() error {
	if DefaultLoggingService == nil || DefaultLoggingService.file == nil {
		return nil
	}
	return DefaultLoggingService.file.Close()
}

// SetupLogger builds a console logger, teeing JSON records into a weekly
// rotating file when logDir is set.
func SetupLogger(logDir string, consoleLevel slog.Level, retentionWeeks int, console io.Writer) (*slog.Logger, *RotatingLogger) {
	return setupLogger(logDir, consoleLevel, retentionWeeks, DefaultMaxFileSize, console)
}

func setupLogger(logDir string, consoleLevel slog.Level, retentionWeeks int, maxFileSize int64, console io.Writer) (*slog.Logger, *RotatingLogger) {
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{Level: consoleLevel})
	if logDir == "" {
		return slog.New(consoleHandler), nil
	}

	file, err := NewRotatingLogger(logDir, retentionWeeks, maxFileSize)
	if err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("Failed to initialize rotating logger, logging to console only", "error", err)
		return logger, nil
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: GetFileLogLevel()})
	return slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}), file
}

// Logger returns the process logger, or a stderr logger before InitLogger.
func Logger() *slog.Logger {
	return current()
}

func current() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}
