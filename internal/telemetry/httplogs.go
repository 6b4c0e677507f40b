package telemetry

import (
	"net/http"
	"time"

	otelLog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

func ChiLogMiddleware(serviceName string) func(http.Handler) http.Handler {
	logger := global.Logger(serviceName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lw := newStatusRecorder(w)

			next.ServeHTTP(lw, r)

			severity, severityText := severityForStatus(lw.status)
			var rec otelLog.Record
			rec.SetEventName("http.request")
			rec.SetTimestamp(time.Now())
			rec.SetSeverity(severity)
			rec.SetSeverityText(severityText)
			rec.SetBody(otelLog.StringValue("request completed"))
			rec.AddAttributes(
				otelLog.String("http.method", r.Method),
				otelLog.String("http.route", routePattern(r)),
				otelLog.String("http.target", r.URL.Path),
				otelLog.Int("http.status_code", lw.status),
				LogDuration("http.duration", time.Since(start)),
			)
			if id := TraceID(r.Context()); id != "" {
				rec.AddAttributes(otelLog.String("trace_id", id))
			}

			logger.Emit(r.Context(), rec)
		})
	}
}

func severityForStatus(status int) (otelLog.Severity, string) {
	switch {
	case status >= 500:
		return otelLog.SeverityError, "ERROR"
	case status >= 400:
		return otelLog.SeverityWarn, "WARN"
	default:
		return otelLog.SeverityInfo, "INFO"
	}
}
