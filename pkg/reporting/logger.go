package reporting

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel is the minimum severity a Logger emits.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat selects the Logger's wire format.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// LoggerConfig configures a Logger: its level gate, its wire format, and
// where it writes.
type LoggerConfig struct {
	Level  LogLevel
	Format LogFormat
	Output io.Writer
}

// Logger is the structured logger the orchestrator threads through config
// loading, environment probing, build/dispatch, and pool teardown. A
// run_id field (see WithField) is attached once at startup so every line
// for a run can be grepped out of a shared CI log.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger builds a Logger per cfg. A text format renders through a
// zerolog.ConsoleWriter (human-readable, colorized); anything else
// writes newline-delimited JSON suitable for log aggregation.
func NewLogger(cfg LoggerConfig) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	var output io.Writer = cfg.Output
	if cfg.Format == LogFormatText {
		output = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: time.RFC3339,
		}
	}

	zlog := zerolog.New(output).With().Timestamp().Logger()

	switch cfg.Level {
	case LogLevelDebug:
		zlog = zlog.Level(zerolog.DebugLevel)
	case LogLevelWarn:
		zlog = zlog.Level(zerolog.WarnLevel)
	case LogLevelError:
		zlog = zlog.Level(zerolog.ErrorLevel)
	default:
		zlog = zlog.Level(zerolog.InfoLevel)
	}

	return &Logger{logger: zlog}
}

// Debug logs a debug-level message with key/value fields, used for the
// per-combination diagnostic dump in pkg/worker.
func (l *Logger) Debug(msg string, fields ...interface{}) {
	event := l.logger.Debug()
	l.addFields(event, fields...)
	event.Msg(msg)
}

// Info logs an info-level message, used for run lifecycle events: the
// build step and the results archive write.
func (l *Logger) Info(msg string, fields ...interface{}) {
	event := l.logger.Info()
	l.addFields(event, fields...)
	event.Msg(msg)
}

// Warn logs a warn-level message, used for recoverable run-level
// conditions: a missing build command, a failed metrics listener, or an
// interrupt cancelling the worker pool.
func (l *Logger) Warn(msg string, fields ...interface{}) {
	event := l.logger.Warn()
	l.addFields(event, fields...)
	event.Msg(msg)
}

// WithField returns a child Logger carrying an additional field on every
// subsequent line, e.g. logger.WithField("run_id", runID) at startup.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		logger: l.logger.With().Interface(key, value).Logger(),
	}
}

// WithCombination returns a child Logger tagged with the canonical name
// of the combination currently executing, so a worker's log lines can be
// correlated with the matching row in the result sink.
func (l *Logger) WithCombination(c Completion) *Logger {
	return l.WithField("combination", c.Name)
}

// addFields adds key-value pairs to a log event, matching zerolog's
// printf-free structured-field convention.
func (l *Logger) addFields(event *zerolog.Event, fields ...interface{}) {
	if len(fields)%2 != 0 {
		event.Str("error", "odd number of fields")
		return
	}

	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			event.Str("error", fmt.Sprintf("field key at index %d is not a string", i))
			continue
		}

		value := fields[i+1]
		event.Interface(key, value)
	}
}
