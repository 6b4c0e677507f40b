package telemetry

import (
	"context"
	"log"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

func InitLogger(serviceName string) func(context.Context) error {
	if !Enabled() {
		return noopShutdown
	}

	exporter, err := otlploggrpc.New(context.Background(),
		otlploggrpc.WithEndpoint(otlpEndpoint("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT")),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		log.Fatalf("log exporter: %v", err)
	}

	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(serviceResource(serviceName)),
	)
	global.SetLoggerProvider(lp)
	return lp.Shutdown
}
