package telemetry

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	otelMetricsEnabled     bool
	otelHTTPRequestsTotal  metric.Int64Counter
	otelHTTPRequestSeconds metric.Float64Histogram
)

func initHTTPMetricsInstruments(serviceName string) {
	meter := otel.Meter(serviceName)

	var err error
	otelHTTPRequestsTotal, err = meter.Int64Counter(
		"pharmaerp_http_requests_total",
		metric.WithDescription("HTTP requests served"),
	)
	if err != nil {
		return
	}

	otelHTTPRequestSeconds, err = meter.Float64Histogram(
		"pharmaerp_http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return
	}

	otelMetricsEnabled = true
}

func ChiMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		mw := newStatusRecorder(w)

		next.ServeHTTP(mw, r)

		if otelMetricsEnabled {
			attrs := []attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.route", routePattern(r)),
				attribute.Int("http.status_code", mw.status),
			}
			otelHTTPRequestsTotal.Add(r.Context(), 1, metric.WithAttributes(attrs...))
			otelHTTPRequestSeconds.Record(
				r.Context(),
				time.Since(start).Seconds(),
				metric.WithAttributes(attrs...),
			)
		}
	})
}
