package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	// LevelError only logs errors
	LevelError LogLevel = iota
	// LevelWarn logs warnings and errors
	LevelWarn
	// LevelInfo logs general information, warnings and errors
	LevelInfo
	// LevelDebug logs detailed debug information and all above
	LevelDebug
	// LevelTrace logs very detailed trace information and all above
	LevelTrace
)

var levelNames = map[LogLevel]string{
	LevelError: "ERROR",
	LevelWarn:  "WARN",
	LevelInfo:  "INFO",
	LevelDebug: "DEBUG",
	LevelTrace: "TRACE",
}

// slogTrace sits below slog.LevelDebug so TRACE records can be filtered apart.
const slogTrace = slog.LevelDebug - 4

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelInfo:
		return slog.LevelInfo
	case LevelDebug:
		return slog.LevelDebug
	default:
		return slogTrace
	}
}

// ParseLevel parses a level name such as "DEBUG" (case-insensitive).
func ParseLevel(name string) (LogLevel, bool) {
	for level, levelName := range levelNames {
		if strings.EqualFold(name, levelName) {
			return level, true
		}
	}
	return LevelInfo, false
}

// Options selects the log sinks.
type Options struct {
	Level   LogLevel
	File    string // rotated JSON log file, empty disables it
	NoColor bool
	Output  io.Writer // console output, defaults to os.Stderr
}

// core is shared by a logger and every logger derived from it via WithPrefix.
type core struct {
	level   slog.LevelVar
	handler slog.Handler
	closer  io.Closer
	mu      sync.RWMutex
}

// Logger provides leveled, prefixed logging on top of slog.
type Logger struct {
	core   *core
	prefix string
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// GetLogger returns the default logger instance
func GetLogger() *Logger {
	once.Do(func() {
		opts := Options{Level: LevelInfo}

		// Set initial log level from environment
		if level, ok := ParseLevel(os.Getenv("LOG_LEVEL")); ok {
			opts.Level = level
		}
		// Enable debug logging if FUSE_DEBUG is set
		if os.Getenv("FUSE_DEBUG") != "" && opts.Level < LevelDebug {
			opts.Level = LevelDebug
		}
		opts.File = os.Getenv("LOG_FILE")
		opts.NoColor = os.Getenv("LOG_NO_COLOR") != ""

		defaultLogger = NewLogger("FUSEBRIDGE", opts)
	})
	return defaultLogger
}

// NewLogger creates a new logger with the given prefix
func NewLogger(prefix string, opts Options) *Logger {
	c := &core{}
	c.level.Set(opts.Level.slogLevel())
	c.handler, c.closer = newHandler(&c.level, opts)
	return &Logger{core: c, prefix: prefix}
}

// Configure replaces the sinks of the default logger. Loggers previously
// derived with WithPrefix follow the change.
func Configure(opts Options) error {
	l := GetLogger()
	handler, closer := newHandler(&l.core.level, opts)

	l.core.mu.Lock()
	previous := l.core.closer
	l.core.handler, l.core.closer = handler, closer
	l.core.mu.Unlock()

	l.SetLevel(opts.Level)
	if previous != nil {
		return previous.Close()
	}
	return nil
}

func newHandler(level *slog.LevelVar, opts Options) (slog.Handler, io.Closer) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	fanout := newFanoutHandler()
	fanout.AddHandler("console", tint.NewHandler(out, &tint.Options{
		Level:      level,
		TimeFormat: time.StampMicro,
		NoColor:    opts.NoColor,
		AddSource:  true,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && a.Value.Any() == slogTrace {
				return slog.String(a.Key, "TRC")
			}
			return a
		},
	}))

	var closer io.Closer
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    64,
			MaxBackups: 5,
			MaxAge:     16,
		}
		fanout.AddHandler("file", slog.NewJSONHandler(file, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		}))
		closer = file
	}
	return fanout, closer
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.core.level.Set(level.slogLevel())
}

// shouldLog determines if a message at the given level should be logged
func (l *Logger) shouldLog(level slog.Level) bool {
	return level >= l.core.level.Level()
}

// log performs the actual logging
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	slogLevel := level.slogLevel()
	if !l.shouldLog(slogLevel) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // skip Callers, log and the exported level method
	record := slog.NewRecord(time.Now(), slogLevel, fmt.Sprintf(format, args...), pcs[0])
	if l.prefix != "" {
		record.AddAttrs(slog.String("component", l.prefix))
	}

	l.core.mu.RLock()
	handler := l.core.handler
	l.core.mu.RUnlock()

	if err := handler.Handle(context.Background(), record); err != nil {
		// write directly to stderr
		fmt.Fprintf(os.Stderr, "Failed to write log message: %v\n", err)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Trace logs a trace message
func (l *Logger) Trace(format string, args ...interface{}) {
	l.log(LevelTrace, format, args...)
}

// WithPrefix creates a new logger with an additional prefix. It shares level
// and sinks with l.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{
		core:   l.core,
		prefix: prefix,
	}
}
