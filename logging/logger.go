// Package logging wires slog to the console and a weekly rotating file and
// exposes package-level helpers used across the service.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/giygas/telehealth-api/config"
)

// Options configures InitLogger. An empty Dir disables the file output.
type Options struct {
	Dir            string
	Env            config.Environment
	Level          string
	Verbose        bool
	RetentionWeeks int
	MaxFileSize    int64
	Console        io.Writer
}

type LoggingService struct {
	Logger *slog.Logger
	file   *RotatingFile
	stop   chan struct{}
	done   chan struct{}
}

var DefaultLoggingService *LoggingService

var (
	fallbackOnce sync.Once
	fallback     *slog.Logger
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel picks the console level. Tests stay quiet unless
// verbose and ignore LOG_LEVEL; elsewhere an explicit level wins over the
// environment default.
func GetConsoleLogLevel(env config.Environment, levelStr string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}
	if levelStr != "" {
		return parseLogLevel(levelStr)
	}
	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel is always debug, the file is the full record
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

// NewService builds a logging service without installing it globally
func NewService(opts Options) (*LoggingService, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(console, &slog.HandlerOptions{
			Level: GetConsoleLogLevel(opts.Env, opts.Level, opts.Verbose),
		}),
	}

	svc := &LoggingService{}
	if opts.Dir != "" {
		weeks := opts.RetentionWeeks
		if weeks <= 0 {
			weeks = 4
		}
		file, err := NewRotatingFile(opts.Dir, weeks, opts.MaxFileSize)
		if err != nil {
			return nil, err
		}
		svc.file = file
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{
			Level: GetFileLogLevel(),
		}))
		svc.stop = make(chan struct{})
		svc.done = make(chan struct{})
		go svc.cleanupLoop(24 * time.Hour)
	}

	svc.Logger = slog.New(&fanout{handlers: handlers})
	return svc, nil
}

func (s *LoggingService) cleanupLoop(every time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n, err := s.file.Cleanup(); err != nil {
				s.Logger.Warn("Failed to clean up old logs", "error", err)
			} else if n > 0 {
				s.Logger.Info("Cleaned up old log files", "count", n)
			}
		}
	}
}

// Close stops the cleanup loop and closes the log file
func (s *LoggingService) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	close(s.stop)
	<-s.done
	return s.file.Close()
}

// InitLogger installs a new service as DefaultLoggingService and slog's
// default. A file setup failure keeps the console logger and is returned.
func InitLogger(opts Options) error {
	svc, err := NewService(opts)
	if err != nil {
		consoleOnly := opts
		consoleOnly.Dir = ""
		svc, _ = NewService(consoleOnly)
	}
	if prev := DefaultLoggingService; prev != nil {
		_ = prev.Close()
	}
	DefaultLoggingService = svc
	slog.SetDefault(svc.Logger)
	return err
}

// Shutdown closes the default service, if any
func Shutdown() error {
	if DefaultLoggingService == nil {
		return nil
	}
	err := DefaultLoggingService.Close()
	DefaultLoggingService = nil
	return err
}

func current() *slog.Logger {
	if DefaultLoggingService != nil && DefaultLoggingService.Logger != nil {
		return DefaultLoggingService.Logger
	}
	fallbackOnce.Do(func() {
		fallback = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	})
	return fallback
}

// Logger returns the active logger, a stderr logger before InitLogger
func Logger() *slog.Logger {
	return current()
}

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

// fanout sends each record to every handler that accepts its level
type fanout struct {
	handlers []slog.Handler
}

func (f *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &fanout{handlers: next}
}

func (f *fanout) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return &fanout{handlers: next}
}
