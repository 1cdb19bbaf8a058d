package logger

import (
	"context"
)

// Entry is a log line under construction carrying metric fields such as
// duration_ms, count and strategy. Context fields are added when it is
// written.
type Entry struct {
	fields Fields
}

// With starts an Entry with the given metric fields.
// Example: logger.With(logger.Fields{logger.FieldStatus: "ok"}).WithCount(3).Info(ctx, "search done")
func With(fields Fields) *Entry {
	return &Entry{fields: fields}
}

// Component starts an Entry tagged with a component name.
func Component(name string) *Entry {
	return With(Fields{FieldComponent: name})
}

// With returns a copy of the Entry with more fields; later values win.
func (e *Entry) With(fields Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Entry{fields: merged}
}

// WithDuration adds a duration_ms field.
func (e *Entry) WithDuration(ms int64) *Entry {
	return e.With(Fields{FieldDurationMs: ms})
}

// WithCount adds a count field.
func (e *Entry) WithCount(count int) *Entry {
	return e.With(Fields{FieldCount: count})
}

// WithStrategy adds the search strategy and the provider query it issued.
func (e *Entry) WithStrategy(strategy, query string) *Entry {
	return e.With(Fields{FieldStrategy: strategy, FieldQuery: query})
}

func (e *Entry) target(ctx context.Context) *Logger {
	return FromContext(ctx).WithFields(e.fields)
}

// Debug logs at Debug level.
func (e *Entry) Debug(ctx context.Context, format string, args ...interface{}) {
	e.target(ctx).Debugf(format, args...)
}

// Info logs at Info level.
func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	e.target(ctx).Infof(format, args...)
}

// Warn logs at Warn level.
func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	e.target(ctx).Warnf(format, args...)
}

// Error logs at Error level.
func (e *Entry) Error(ctx context.Context, format string, args ...interface{}) {
	e.target(ctx).Errorf(format, args...)
}
