// Package logger wraps zerolog with a small structured-field API shared by
// every long-lived component in the pipeline.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a thin wrapper over a configured zerolog.Logger.
type Logger struct {
	zl zerolog.Logger
}

// Config controls how a Logger is constructed.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // "json" (default) or "console"
	Output     string // "stdout", "stderr", or a file path
	TimeFormat string
}

// New builds a Logger from cfg.
func New(cfg Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var output io.Writer
	switch cfg.Output {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %q: %w", cfg.Output, err)
		}
		output = file
	}

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}
	zerolog.TimeFieldFormat = timeFormat

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: timeFormat}
	}

	zl := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}, nil
}

// With returns a child logger carrying an extra "component" field.
func (l *Logger) With(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(l.zl.Error(), msg, fields) }

func (l *Logger) log(event *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		f.addTo(event)
	}
	event.Msg(msg)
}

// Field is one structured key/value pair attached to a log event.
type Field interface {
	addTo(event *zerolog.Event)
}

type stringField struct {
	key, value string
}

func (f stringField) addTo(e *zerolog.Event) { e.Str(f.key, f.value) }

type intField struct {
	key   string
	value int
}

func (f intField) addTo(e *zerolog.Event) { e.Int(f.key, f.value) }

type durationField struct {
	key   string
	value time.Duration
}

func (f durationField) addTo(e *zerolog.Event) { e.Dur(f.key, f.value) }

type errField struct{ err error }

func (f errField) addTo(e *zerolog.Event) { e.Err(f.err) }

type boolField struct {
	key   string
	value bool
}

func (f boolField) addTo(e *zerolog.Event) { e.Bool(f.key, f.value) }

type anyField struct {
	key   string
	value interface{}
}

func (f anyField) addTo(e *zerolog.Event) { e.Interface(f.key, f.value) }

func String(key, value string) Field       { return stringField{key, value} }
func Int(key string, value int) Field      { return intField{key, value} }
func Duration(key string, value time.Duration) Field { return durationField{key, value} }
func Err(err error) Field                  { return errField{err} }
func Bool(key string, value bool) Field    { return boolField{key, value} }
func Any(key string, value interface{}) Field { return anyField{key, value} }
func Strings(key string, value []string) Field {
	return stringField{key, strings.Join(value, ", ")}
}

var defaultLogger = mustDefault()

func mustDefault() *Logger {
	l, err := New(Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		panic(err)
	}
	return l
}

// Default returns the package-wide fallback logger, used by code that has
// not been wired with an explicit instance.
func Default() *Logger { return defaultLogger }
