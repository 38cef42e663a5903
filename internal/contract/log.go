package contract

import (
	"context"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// logger is the process-wide logger used by the Log helpers.
var logger atomic.Pointer[log.Logger]

func init() {
	logger.Store(NewLogger(os.Stderr, log.InfoLevel))
}

// NewLogger creates a logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// SetLogger replaces the process-wide logger.
func SetLogger(l *log.Logger) {
	logger.Store(l)
}

// SetVerbose switches the process-wide logger between info and debug level.
func SetVerbose(verbose bool) {
	if verbose {
		Logger().SetLevel(log.DebugLevel)
		return
	}
	Logger().SetLevel(log.InfoLevel)
}

// Logger returns the process-wide logger.
func Logger() *log.Logger {
	return logger.Load()
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger().Error(msg, "err", err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	Logger().Warn(msg, "err", err)
}

// LogInfo logs an informational message with optional key-value pairs.
func LogInfo(msg string, keyvals ...any) {
	Logger().Info(msg, keyvals...)
}

// LogDebug logs a debug message with optional key-value pairs.
func LogDebug(msg string, keyvals ...any) {
	Logger().Debug(msg, keyvals...)
}

// Progress tracks the start time of an operation and logs completion with elapsed duration.
type Progress struct {
	logger *log.Logger
	start  time.Time
}

// NewProgress creates a progress tracker that captures the current time as start.
func NewProgress(ctx context.Context) *Progress {
	return &Progress{logger: LoggerFromContext(ctx), start: time.Now()}
}

// Done logs msg along with the elapsed time, rounded to the millisecond.
func (p *Progress) Done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Debug(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// WithLogger returns a new context with the given logger attached.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// LoggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns the process-wide logger.
func LoggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return Logger()
}
