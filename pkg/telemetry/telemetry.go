// Package telemetry installs the OpenTelemetry meter provider that
// exports the server's metrics.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"go.minekube.com/kasumi/pkg/version"
)

// Config is the telemetry configuration.
type Config struct {
	Metrics Metrics
}

// Metrics configures metric export.
type Metrics struct {
	Enabled  bool
	Exporter string // stdout or otlp
	Endpoint string // OTLP gRPC collector address
	Interval int    // ms between exports, 0 uses the SDK default
}

// Exporters lists the supported metric exporters.
var Exporters = []string{"stdout", "otlp"}

const shutdownTimeout = 5 * time.Second

// Init sets the global meter provider if metrics are enabled.
// The returned cleanup flushes pending metrics and must be called on exit.
func Init(ctx context.Context, cfg Config) (cleanup func(), err error) {
	if !cfg.Metrics.Enabled {
		return func() {}, nil
	}
	provider, err := newMeterProvider(ctx, cfg.Metrics, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	otel.SetMeterProvider(provider)

	log := logr.FromContextOrDiscard(ctx)
	log.Info("exporting metrics", "exporter", cfg.Metrics.Exporter)
	return func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.Error(err, "failed to shutdown meter provider")
		}
	}, nil
}

func newMeterProvider(ctx context.Context, cfg Metrics, stdout io.Writer) (*sdkmetric.MeterProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName("kasumi"),
			semconv.ServiceVersion(version.String()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	switch cfg.Exporter {
	case "stdout":
		exporter, err = stdoutmetric.New(stdoutmetric.WithWriter(stdout))
	case "otlp":
		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unknown metrics exporter: %q", cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s metrics exporter: %w", cfg.Exporter, err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(time.Duration(cfg.Interval)*time.Millisecond))
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	), nil
}
