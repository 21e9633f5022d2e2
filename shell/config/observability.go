package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	metricExportInterval = 5 * time.Second
	shutdownTimeout      = 5 * time.Second
)

// ObservabilityProviders holds the OpenTelemetry providers created from the configuration.
// TracerProvider is nil unless tracing is enabled. MeterProvider is nil unless metrics go to OTel.
type ObservabilityProviders struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
	Resource       *resource.Resource
}

// NewObservabilityProviders creates the OTLP gRPC exporters and providers that cfg asks for
// and installs them, together with the W3C trace context propagator, as the global providers.
func NewObservabilityProviders(
	ctx context.Context,
	cfg ObservabilitySection,
	serviceVersion string,
) (*ObservabilityProviders, error) {

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &ObservabilityProviders{Resource: res}

	if cfg.Tracing {
		traceExporter, exporterErr := otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if exporterErr != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", exporterErr)
		}

		providers.TracerProvider = trace.NewTracerProvider(
			trace.WithBatcher(traceExporter),
			trace.WithResource(res),
		)

		otel.SetTracerProvider(providers.TracerProvider)
	}

	if cfg.Metrics == MetricsOTel {
		metricExporter, exporterErr := otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if exporterErr != nil {
			return nil, errors.Join(
				fmt.Errorf("failed to create metric exporter: %w", exporterErr),
				providers.Shutdown(),
			)
		}

		providers.MeterProvider = metric.NewMeterProvider(
			metric.WithReader(metric.NewPeriodicReader(metricExporter,
				metric.WithInterval(metricExportInterval))),
			metric.WithResource(res),
		)

		otel.SetMeterProvider(providers.MeterProvider)
	}

	otel.SetTextMapPropagator(propagation.TraceContext{})

	return providers, nil
}

// Shutdown flushes and shuts down the providers that were created.
func (p *ObservabilityProviders) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}

	return errors.Join(errs...)
}
