package telemetry

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics installs the OTLP meter provider and registers the HTTP
// instruments. The instruments are registered even when export is disabled.
func InitMetrics(serviceName string) func(context.Context) error {
	if !Enabled() {
		initHTTPMetricsInstruments(serviceName)
		return noopShutdown
	}

	exporter, err := otlpmetricgrpc.New(context.Background(),
		otlpmetricgrpc.WithEndpoint(otlpEndpoint("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT")),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		log.Fatalf("metrics exporter: %v", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(serviceResource(serviceName)),
	)
	otel.SetMeterProvider(mp)
	initHTTPMetricsInstruments(serviceName)

	return mp.Shutdown
}
