package telemetry

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTELHook adds trace and span IDs to every log entry so preflight logs can
// be correlated with their traces.
type OTELHook struct{}

func (h OTELHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return
	}

	e.Str("trace_id", span.SpanContext().TraceID().String())
	e.Str("span_id", span.SpanContext().SpanID().String())

	if level == zerolog.ErrorLevel {
		span.SetStatus(codes.Error, msg)
	}
}

// Logger wraps zerolog with OTEL trace correlation.
type Logger struct {
	zerolog.Logger
}

// NewLogger creates a logger scoped to one component.
func NewLogger(component string) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	logger := zerolog.New(os.Stderr).
		With().
		Timestamp().
		Str("component", component).
		Logger().
		Hook(OTELHook{})

	return &Logger{Logger: logger}
}

// WithContext returns a logger carrying the context for trace propagation.
func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.Logger.With().Ctx(ctx).Logger()
	return &logger
}

// LogRequirementChecked records one requirement validation outcome.
func (l *Logger) LogRequirementChecked(ctx context.Context, key string, valid, exists bool) {
	l.WithContext(ctx).Info().
		Str("requirement", key).
		Bool("valid", valid).
		Bool("exists", exists).
		Msg("requirement checked")
}

// LogPreflightComplete records the end of a preflight run.
func (l *Logger) LogPreflightComplete(ctx context.Context, total, invalid, missing int, durationMs float64) {
	event := l.WithContext(ctx).Info()
	if invalid > 0 {
		event = l.WithContext(ctx).Error()
	}
	event.
		Int("total", total).
		Int("invalid", invalid).
		Int("missing", missing).
		Float64("duration_ms", durationMs).
		Msg("preflight complete")
}

// LogValidationFailure records an unexpected transport failure that was
// converted into an invalid result.
func (l *Logger) LogValidationFailure(ctx context.Context, key string, err error) {
	l.WithContext(ctx).Error().
		Err(err).
		Str("requirement", key).
		Msg("validation failed")
}
