// Package telemetry installs the process-wide OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"fmt"

	"claudehub/pkg/config"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "claudehub"

type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// Setup exports spans over OTLP/HTTP when tracing is enabled. With tracing
// off the global no-op provider stays in place.
func Setup(ctx context.Context, cfg *config.Config, version string) (ShutdownFunc, error) {
	if !cfg.OTelEnabled {
		return noop, nil
	}

	var opts []otlptracehttp.Option
	if cfg.OTelEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpointURL(cfg.OTelEndpoint))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return noop, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", version),
		)),
	)
	otel.SetTracerProvider(provider)
	logrus.Infof("Tracing enabled, exporting to %s", endpointOrDefault(cfg.OTelEndpoint))

	return provider.Shutdown, nil
}

func endpointOrDefault(endpoint string) string {
	if endpoint == "" {
		return "the default OTLP endpoint"
	}
	return endpoint
}
