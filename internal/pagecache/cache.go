package pagecache

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "pharmaerp:cache:"

// Cache stores list pages of one entity in Redis. Pages are keyed by the
// canonical filter and the entity's write generation, so Invalidate makes
// every cached page unreachable without scanning keys.
type Cache[T any] struct {
	client *redis.Client
	prefix string
	entity string
	ttl    time.Duration
}

func New[T any](client *redis.Client, prefix, entity string, ttl time.Duration) *Cache[T] {
	p := strings.TrimSpace(prefix)
	if p == "" {
		p = defaultPrefix
	}
	return &Cache[T]{client: client, prefix: p, entity: entity, ttl: ttl}
}

func (c *Cache[T]) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func (c *Cache[T]) keyGeneration() string {
	return c.prefix + c.entity + ":gen"
}

func listKey(prefix, entity string, gen int64, v url.Values) string {
	return prefix + entity + ":list:g" + strconv.FormatInt(gen, 10) + ":" + v.Encode()
}

func (c *Cache[T]) generation(ctx context.Context) (int64, error) {
	val, err := c.client.Get(ctx, c.keyGeneration()).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return val, nil
}

// Fetch returns the cached page for v or calls load and caches its result.
// Redis failures fall through to load.
func (c *Cache[T]) Fetch(ctx context.Context, v url.Values, load func(ctx context.Context) (paging.Result[T], error)) (paging.Result[T], error) {
	if !c.enabled() {
		return load(ctx)
	}

	gen, err := c.generation(ctx)
	if err != nil {
		return load(ctx)
	}
	key := listKey(c.prefix, c.entity, gen, v)

	if val, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached paging.Result[T]
		if err := json.Unmarshal(val, &cached); err == nil {
			return cached, nil
		}
	}

	res, err := load(ctx)
	if err != nil {
		return res, err
	}

	// Stored under the generation read above; a concurrent Invalidate leaves
	// this entry unreachable.
	if payload, err := json.Marshal(res); err == nil {
		_ = c.client.Set(ctx, key, payload, c.ttl).Err()
	}
	return res, nil
}

// Invalidate bumps the write generation.
func (c *Cache[T]) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Incr(ctx, c.keyGeneration()).Err()
}
