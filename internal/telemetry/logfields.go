package telemetry

import (
	"context"
	"time"

	otelLog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/trace"
)

func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

func LogString(key, value string) otelLog.KeyValue {
	return otelLog.String(key, value)
}

func LogInt(key string, value int) otelLog.KeyValue {
	return otelLog.Int(key, value)
}

func LogInt64(key string, value int64) otelLog.KeyValue {
	return otelLog.Int64(key, value)
}

func LogBool(key string, value bool) otelLog.KeyValue {
	return otelLog.Bool(key, value)
}

// LogErr is the "error" attribute. A nil error yields an empty string.
func LogErr(err error) otelLog.KeyValue {
	if err == nil {
		return otelLog.String("error", "")
	}
	return otelLog.String("error", err.Error())
}

// LogStrings records values as a log array, e.g. a principal's roles.
func LogStrings(key string, values []string) otelLog.KeyValue {
	vals := make([]otelLog.Value, 0, len(values))
	for _, v := range values {
		vals = append(vals, otelLog.StringValue(v))
	}
	return otelLog.Slice(key, vals...)
}

func LogDuration(key string, d time.Duration) otelLog.KeyValue {
	return otelLog.Int64(key+"_ms", d.Milliseconds())
}
