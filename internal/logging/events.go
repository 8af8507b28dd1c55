package logging

import (
	"context"
	"log/slog"
	"slices"
)

const (
	defaultErrorHint = "rerun with --log-level debug for details"
	defaultImpact    = "evidence may be incomplete"
)

// WarnWithContext logs a degraded-but-continuing condition. event_type,
// error_hint and impact are always present; caller-supplied values win.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	logEvent(logger, slog.LevelWarn, msg, eventType, attrs)
}

// ErrorWithContext logs a failure with event_type and error_hint fields.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	logEvent(logger, slog.LevelError, msg, eventType, attrs)
}

func logEvent(logger *slog.Logger, level slog.Level, msg, eventType string, attrs []Attr) {
	if logger == nil || !logger.Enabled(context.Background(), level) {
		return
	}
	attrs = withDefault(attrs, FieldEventType, eventType)
	attrs = withDefault(attrs, FieldErrorHint, defaultErrorHint)
	if level == slog.LevelWarn {
		attrs = withDefault(attrs, FieldImpact, defaultImpact)
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func withDefault(attrs []Attr, key, value string) []Attr {
	if slices.ContainsFunc(attrs, func(a Attr) bool { return a.Key == key }) {
		return attrs
	}
	return append(attrs, String(key, value))
}
