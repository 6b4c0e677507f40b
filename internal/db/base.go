package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Queryer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Base struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewBase(pool *pgxpool.Pool, timeout time.Duration) *Base {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Base{
		pool:    pool,
		timeout: timeout,
	}
}

func (b *Base) Q() Queryer {
	return instrumentedQueryer{q: b.pool}
}

func (b *Base) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}

// WithTx runs fn in a read-write transaction committed when fn returns nil.
func (b *Base) WithTx(ctx context.Context, fn func(ctx context.Context, q Queryer) error) error {
	return b.inTx(ctx, pgx.TxOptions{}, fn)
}

// ReadTx runs fn in a read-only repeatable-read transaction so every
// statement inside sees the same snapshot.
func (b *Base) ReadTx(ctx context.Context, fn func(ctx context.Context, q Queryer) error) error {
	return b.inTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	}, fn)
}

func (b *Base) inTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, q Queryer) error) error {
	ctx, cancel := b.WithTimeout(ctx)
	defer cancel()

	tx, err := b.pool.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, instrumentedQueryer{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	return nil
}
