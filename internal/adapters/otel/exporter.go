package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/bayesab/internal/ports"
)

const (
	serviceName    = "bayesab"
	serviceVersion = "1.0.0"
)

// Exporter pushes calculator metrics to an OTEL Collector.
type Exporter struct {
	provider     *sdkmetric.MeterProvider
	calculations metric.Int64Counter
	failures     metric.Int64Counter
	duration     metric.Float64Histogram
	probability  metric.Float64Histogram
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	return newExporter(ctx, sdkmetric.NewPeriodicReader(exp))
}

func newExporter(ctx context.Context, reader sdkmetric.Reader) (*Exporter, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	calculations, err := meter.Int64Counter(
		"bayesab_calculations_total",
		metric.WithDescription("Number of estimate and analyze calls"),
		metric.WithUnit("{calculation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating calculations counter: %w", err)
	}

	failures, err := meter.Int64Counter(
		"bayesab_calculation_failures_total",
		metric.WithDescription("Number of calculations that returned an error"),
		metric.WithUnit("{calculation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"bayesab_calculation_duration_seconds",
		metric.WithDescription("Time spent per calculation"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	probability, err := meter.Float64Histogram(
		"bayesab_lift_probability",
		metric.WithDescription("Probability that lift exceeds the minimum, per analysis"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating probability histogram: %w", err)
	}

	return &Exporter{
		provider:     provider,
		calculations: calculations,
		failures:     failures,
		duration:     duration,
		probability:  probability,
	}, nil
}

// RecordCalculation records one estimate or analyze call.
func (e *Exporter) RecordCalculation(ctx context.Context, c ports.Calculation) {
	attrs := []attribute.KeyValue{
		attribute.String("operation", c.Operation),
	}
	if c.Verdict != "" {
		attrs = append(attrs, attribute.String("verdict", c.Verdict))
	}
	opt := metric.WithAttributes(attrs...)

	e.calculations.Add(ctx, 1, opt)
	e.duration.Record(ctx, c.Duration.Seconds(), opt)

	if c.Err != nil {
		e.failures.Add(ctx, 1, opt)
		return
	}
	if c.Operation == ports.OpAnalyze {
		e.probability.Record(ctx, c.Probability, opt)
	}
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
