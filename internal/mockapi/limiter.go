package mockapi

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter caps how often a key may be used.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

const redisAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisLimiter allows max uses of a key per window, counted in redis. When
// redis fails the call is allowed.
type RedisLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

func NewRedisLimiter(client redisEvaler, window time.Duration, max int) *RedisLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &RedisLimiter{client: client, window: window, max: max, prefix: "medhelper:resend:"}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	seconds := max(int(l.window.Seconds()), 1)
	count, err := l.client.Eval(ctx, redisAllowScript, []string{l.prefix + key}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}

type allowAll struct{}

func (allowAll) Allow(context.Context, string) bool { return true }
