package telemetry

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	promclient "github.com/prometheus/client_golang/prometheus"
)

// Global telemetry handles.
var (
	// Tracer for preflight spans.
	Tracer = otel.Tracer("github.com/yairfalse/varmista")

	// Meter for preflight metrics.
	Meter = otel.Meter("github.com/yairfalse/varmista")

	// PrometheusRegistry backs the OTEL prometheus exporter; exposed so a
	// long-running caller can mount a scrape handler on it.
	PrometheusRegistry *promclient.Registry

	// Metric instruments, created by InitOTEL.
	RequirementsValidated metric.Int64Counter
	RequirementsMissing   metric.Int64Counter
	PreflightDuration     metric.Float64Histogram
)

// Config for OTEL initialization.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTELEndpoint   string // OTLP gRPC endpoint for traces; empty disables tracing export
	Insecure       bool
}

// InitOTEL initializes tracing and metrics. The returned shutdown must be
// called before process exit so the last preflight spans flush.
func InitOTEL(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "varmista"
	}
	if cfg.OTELEndpoint == "" {
		cfg.OTELEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create otel resource: %w", err)
	}

	traceShutdown, err := setupTraceProvider(ctx, cfg, res)
	if err != nil {
		return nil, fmt.Errorf("setup traces: %w", err)
	}

	metricShutdown, err := setupMetricProvider(res)
	if err != nil {
		_ = traceShutdown(ctx)
		return nil, fmt.Errorf("setup metrics: %w", err)
	}

	if err := initInstruments(); err != nil {
		_ = traceShutdown(ctx)
		_ = metricShutdown(ctx)
		return nil, fmt.Errorf("init instruments: %w", err)
	}

	return func(ctx context.Context) error {
		var err error
		if e := traceShutdown(ctx); e != nil {
			err = fmt.Errorf("trace shutdown failed: %w", e)
		}
		if e := metricShutdown(ctx); e != nil && err == nil {
			err = fmt.Errorf("metric shutdown failed: %w", e)
		}
		return err
	}, nil
}

func setupTraceProvider(ctx context.Context, cfg Config, res *resource.Resource) (func(context.Context) error, error) {
	if cfg.OTELEndpoint == "" {
		// No collector configured: keep the no-op global tracer.
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.OTELEndpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithDialOption(
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	Tracer = provider.Tracer("github.com/yairfalse/varmista")

	return provider.Shutdown, nil
}

func setupMetricProvider(res *resource.Resource) (func(context.Context) error, error) {
	registry := promclient.NewRegistry()
	PrometheusRegistry = registry

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	otel.SetMeterProvider(provider)
	Meter = provider.Meter("github.com/yairfalse/varmista")

	return provider.Shutdown, nil
}

func initInstruments() error {
	var err error

	RequirementsValidated, err = Meter.Int64Counter("varmista.requirements.validated.total",
		metric.WithDescription("Total requirements validated, by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("create requirements_validated counter: %w", err)
	}

	RequirementsMissing, err = Meter.Int64Counter("varmista.requirements.missing.total",
		metric.WithDescription("Total requirements found missing from the target account"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("create requirements_missing counter: %w", err)
	}

	PreflightDuration, err = Meter.Float64Histogram("varmista.preflight.duration.seconds",
		metric.WithDescription("Duration of complete preflight runs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("create preflight_duration histogram: %w", err)
	}

	return nil
}

// RecordRequirement records one requirement validation outcome.
func RecordRequirement(ctx context.Context, outcome string) {
	if RequirementsValidated == nil {
		return
	}
	RequirementsValidated.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordMissing records a missing external dependency.
func RecordMissing(ctx context.Context, resourceType string) {
	if RequirementsMissing == nil {
		return
	}
	RequirementsMissing.Add(ctx, 1, metric.WithAttributes(attribute.String("resource.type", resourceType)))
}

// RecordPreflightDuration records a complete run's duration.
func RecordPreflightDuration(ctx context.Context, seconds float64, allValid bool) {
	if PreflightDuration == nil {
		return
	}
	PreflightDuration.Record(ctx, seconds, metric.WithAttributes(attribute.Bool("all_valid", allValid)))
}
