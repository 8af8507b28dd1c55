package logging

import (
	"context"
	"log/slog"

	"vidcheck/internal/services"
)

// Structured field keys shared by every component.
const (
	FieldComponent     = "component"
	FieldRunID         = "run_id"
	FieldStage         = "stage"
	FieldCorrelationID = "correlation_id"
	FieldEventType     = "event_type"
	FieldErrorHint     = "error_hint"
	FieldImpact        = "impact"
	FieldError         = "error"
)

var contextExtractors = []struct {
	key     string
	extract func(context.Context) (string, bool)
}{
	{FieldRunID, services.RunIDFromContext},
	{FieldStage, services.StageFromContext},
	{FieldCorrelationID, services.RequestIDFromContext},
}

// ContextFields returns the run, stage and request identifiers carried by ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	for _, e := range contextExtractors {
		if value, ok := e.extract(ctx); ok {
			fields = append(fields, slog.String(e.key, value))
		}
	}
	return fields
}

// WithContext returns logger annotated with ContextFields(ctx).
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
