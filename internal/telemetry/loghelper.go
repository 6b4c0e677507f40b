package telemetry

import (
	"context"
	"time"

	otelLog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

const logScope = "github.com/PabloPavan/pharmaerp_api"

// Log emits an application log event. The active trace id, when there is
// one, is attached so the event can be joined with its request span.
func Log(ctx context.Context, severity otelLog.Severity, msg string, attrs ...otelLog.KeyValue) {
	var rec otelLog.Record
	rec.SetEventName("app.log")
	rec.SetTimestamp(time.Now())
	rec.SetSeverity(severity)
	rec.SetSeverityText(severityText(severity))
	rec.SetBody(otelLog.StringValue(msg))
	rec.AddAttributes(attrs...)
	if tid := TraceID(ctx); tid != "" {
		rec.AddAttributes(otelLog.String("trace_id", tid))
	}

	global.Logger(logScope).Emit(ctx, rec)
}

func LogInfo(ctx context.Context, msg string, attrs ...otelLog.KeyValue) {
	Log(ctx, otelLog.SeverityInfo, msg, attrs...)
}

func LogWarn(ctx context.Context, msg string, attrs ...otelLog.KeyValue) {
	Log(ctx, otelLog.SeverityWarn, msg, attrs...)
}

func LogError(ctx context.Context, msg string, attrs ...otelLog.KeyValue) {
	Log(ctx, otelLog.SeverityError, msg, attrs...)
}

func severityText(sev otelLog.Severity) string {
	switch {
	case sev >= otelLog.SeverityError:
		return "ERROR"
	case sev >= otelLog.SeverityWarn:
		return "WARN"
	default:
		return "INFO"
	}
}
