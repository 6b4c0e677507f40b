package telemetry

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	authMetricsEnabled bool
	authDecisions      metric.Int64Counter
)

// InitAppMetrics registers connection pool gauges and the auth decision
// counter. Either pool may be nil.
func InitAppMetrics(serviceName string, pool *pgxpool.Pool, rdb *redis.Client) {
	meter := otel.Meter(serviceName)

	var err error
	authDecisions, err = meter.Int64Counter(
		"pharmaerp_auth_decisions_total",
		metric.WithDescription("Request gate outcomes"),
	)
	if err == nil {
		authMetricsEnabled = true
	}

	dbConns, err := meter.Int64ObservableGauge(
		"pharmaerp_db_pool_connections",
		metric.WithDescription("Postgres pool connections by state"),
	)
	if err != nil {
		return
	}
	redisConns, err := meter.Int64ObservableGauge(
		"pharmaerp_redis_pool_connections",
		metric.WithDescription("Redis pool connections by state"),
	)
	if err != nil {
		return
	}

	_, _ = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		if pool != nil {
			st := pool.Stat()
			o.ObserveInt64(dbConns, int64(st.AcquiredConns()), metric.WithAttributes(attribute.String("state", "acquired")))
			o.ObserveInt64(dbConns, int64(st.IdleConns()), metric.WithAttributes(attribute.String("state", "idle")))
			o.ObserveInt64(dbConns, int64(st.TotalConns()), metric.WithAttributes(attribute.String("state", "total")))
		}
		if rdb != nil {
			st := rdb.PoolStats()
			o.ObserveInt64(redisConns, int64(st.IdleConns), metric.WithAttributes(attribute.String("state", "idle")))
			o.ObserveInt64(redisConns, int64(st.TotalConns), metric.WithAttributes(attribute.String("state", "total")))
		}
		return nil
	}, dbConns, redisConns)
}

// RecordAuthDecision counts one request gate outcome, e.g. "allowed",
// "missing_token", "invalid_token" or "forbidden".
func RecordAuthDecision(ctx context.Context, outcome string) {
	if !authMetricsEnabled {
		return
	}
	authDecisions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
