package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "pharmaerp:rl:"
	defaultLimit  = 5
)

var errUnexpectedReply = errors.New("ratelimit: unexpected script reply")

// Limiter is a fixed-window counter kept in Redis. A nil client disables it.
type Limiter struct {
	Client *redis.Client
	Prefix string
	Limit  int
	Window time.Duration
}

func New(client *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{Client: client, Prefix: defaultPrefix, Limit: limit, Window: window}
}

var allowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
local ttl = redis.call("PTTL", KEYS[1])
if current > tonumber(ARGV[1]) then
  return {0, ttl}
end
return {1, ttl}
`)

// Allow counts one attempt for key. When the window is exhausted it reports
// how long until the counter resets.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if l == nil || l.Client == nil {
		return true, 0, nil
	}

	limit, window := l.settings()
	res, err := allowScript.Run(ctx, l.Client, []string{l.key(key)}, limit, window.Milliseconds()).Result()
	if err != nil {
		return false, 0, err
	}

	values, ok := res.([]any)
	if !ok || len(values) != 2 {
		return false, 0, errUnexpectedReply
	}

	allowed, _ := values[0].(int64)
	ttlMs, _ := values[1].(int64)
	if ttlMs < 0 {
		ttlMs = window.Milliseconds()
	}

	return allowed == 1, time.Duration(ttlMs) * time.Millisecond, nil
}

// Reset clears the counter for key, e.g. after a successful login.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if l == nil || l.Client == nil {
		return nil
	}
	return l.Client.Del(ctx, l.key(key)).Err()
}

func (l *Limiter) settings() (int, time.Duration) {
	limit := l.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	window := l.Window
	if window <= 0 {
		window = time.Minute
	}
	return limit, window
}

func (l *Limiter) key(key string) string {
	prefix := strings.TrimSpace(l.Prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	return prefix + key
}
