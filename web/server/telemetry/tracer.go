// Package telemetry configures OpenTelemetry tracing of the web server.
package telemetry

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// InitTracer sets the global tracer provider to one that exports spans as
// JSON to w. If w is nil, tracing stays disabled. The returned function
// flushes pending spans and stops the provider.
func InitTracer(
	serviceName, serviceVersion string, w io.Writer, logger *slog.Logger,
) (func(context.Context) error, error) {
	if w == nil {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err //nolint:wrapcheck // This is wrapped by the caller.
	}

	res, err := resource.Merge(
		resource.Default(),
		// No schema URL, so it can't conflict with the one of the default resource.
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // This is wrapped by the caller.
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Debug("OpenTelemetry tracing initialized", "service", serviceName)

	return tp.Shutdown, nil
}
