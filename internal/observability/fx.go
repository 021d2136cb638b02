package observability

import (
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"

	"github.com/smallbiznis/faktura/internal/config"
	"github.com/smallbiznis/faktura/internal/observability/logger"
	"github.com/smallbiznis/faktura/internal/observability/metrics"
	"github.com/smallbiznis/faktura/internal/observability/tracing"
)

// Module wires logging, tracing, and metrics into the fx graph.
var Module = fx.Module("observability",
	logger.Module,
	fx.Provide(func(cfg config.Config) tracing.Config {
		return tracing.Config{
			Enabled:          cfg.Observability.TracingEnabled,
			ServiceName:      cfg.Observability.ServiceName,
			ServiceVersion:   cfg.Observability.ServiceVersion,
			Environment:      cfg.Environment,
			ExporterEndpoint: cfg.Observability.ExporterEndpoint,
			ExporterProtocol: cfg.Observability.ExporterProtocol,
			SamplingRatio:    cfg.Observability.SamplingRatio,
		}
	}),
	fx.Provide(tracing.NewProvider),
	fx.Provide(func(cfg config.Config) metrics.Config {
		return metrics.Config{
			ServiceName: cfg.Observability.ServiceName,
			Environment: cfg.Environment,
		}
	}),
	fx.Provide(NewMeterProvider),
	fx.Provide(metrics.NewHTTPMetrics),
	// The tracer provider registers itself globally on construction; nothing
	// else in the graph depends on it, so force instantiation here.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)

// NewMeterProvider exposes otel metrics through the default prometheus
// registry, scraped via the /metrics endpoint.
func NewMeterProvider() (metric.MeterProvider, error) {
	exporter, err := otelprom.New()
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)), nil
}
