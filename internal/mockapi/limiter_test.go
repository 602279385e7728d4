package mockapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis counts Eval calls per key the way the INCR script does.
type fakeRedis struct {
	counts map[string]int64
	ttl    []any
	err    error
}

func (f *fakeRedis) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	if f.err != nil {
		return redis.NewCmdResult(nil, f.err)
	}
	f.counts[keys[0]]++
	f.ttl = args
	return redis.NewCmdResult(f.counts[keys[0]], nil)
}

func TestRedisLimiter(t *testing.T) {
	fake := &fakeRedis{counts: map[string]int64{}}
	l := NewRedisLimiter(fake, 10*time.Minute, 2)
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "Ann@example.com"))
	assert.True(t, l.Allow(ctx, " ann@example.com"))
	assert.False(t, l.Allow(ctx, "ann@example.com"))
	assert.True(t, l.Allow(ctx, "bob@example.com"), "keys are independent")

	assert.EqualValues(t, 3, fake.counts["medhelper:resend:ann@example.com"])
	require.Len(t, fake.ttl, 1)
	assert.Equal(t, 600, fake.ttl[0])

	assert.False(t, l.Allow(ctx, "  "))
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	l := NewRedisLimiter(&fakeRedis{err: errors.New("connection refused")}, time.Minute, 1)
	assert.True(t, l.Allow(context.Background(), "ann@example.com"))
}
