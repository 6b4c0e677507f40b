package telemetry

import (
	"context"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Enabled reports whether exporters should be started. OTEL_SDK_DISABLED
// turns every signal off, which keeps the global no-op providers in place.
func Enabled() bool {
	disabled, err := strconv.ParseBool(strings.TrimSpace(os.Getenv("OTEL_SDK_DISABLED")))
	return err != nil || !disabled
}

func noopShutdown(_ context.Context) error { return nil }

func otlpEndpoint(signalEnv string) string {
	for _, key := range []string{signalEnv, "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return "localhost:4317"
}

// serviceResource describes this process on every exported signal.
func serviceResource(serviceName string) *resource.Resource {
	attrs := []attribute.KeyValue{semconv.ServiceName(serviceName)}
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		attrs = append(attrs, semconv.ServiceVersion(v))
	}
	if env := strings.TrimSpace(os.Getenv("APP_ENV")); env != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(env))
	}
	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}
