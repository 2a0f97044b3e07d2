package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user-management-api/internal/logging"
)

func newTestRedis(t *testing.T, addr string) *Redis {
	t.Helper()
	r := NewRedis(RedisOptions{
		Addr:             addr,
		DialTimeout:      200 * time.Millisecond,
		OpTimeout:        200 * time.Millisecond,
		BreakerFailures:  2,
		BreakerOpenFor:   time.Minute,
		BreakerHalfOpens: 1,
	}, logging.Discard())
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRedis_SetGet(t *testing.T) {
	mr := miniredis.RunT(t)
	r := newTestRedis(t, mr.Addr())
	ctx := context.Background()

	assert.Equal(t, StatusMiss, r.Get(ctx, "weather:delhi").Status)

	require.NoError(t, r.Set(ctx, "weather:delhi", []byte(`{"city":"Delhi"}`), 10*time.Minute))

	res := r.Get(ctx, "weather:delhi")
	require.Equal(t, StatusHit, res.Status)
	assert.Equal(t, `{"city":"Delhi"}`, string(res.Value))
	assert.Equal(t, 10*time.Minute, mr.TTL("weather:delhi"))
}

func TestRedis_EntryExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	r := newTestRedis(t, mr.Addr())
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("v"), 10*time.Minute))
	mr.FastForward(10 * time.Minute)

	assert.Equal(t, StatusMiss, r.Get(ctx, "k").Status)
}

func TestRedis_UnreachableServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	r := newTestRedis(t, addr)
	ctx := context.Background()

	res := r.Get(ctx, "k")
	assert.Equal(t, StatusUnavailable, res.Status)
	assert.ErrorIs(t, res.Err, ErrUnavailable)

	err := r.Set(ctx, "k", []byte("v"), time.Minute)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRedis_BreakerOpensAfterFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	r := newTestRedis(t, addr)
	ctx := context.Background()

	r.Get(ctx, "a")
	r.Get(ctx, "b")
	assert.Equal(t, gobreaker.StateOpen, r.BreakerState())

	res := r.Get(ctx, "c")
	assert.Equal(t, StatusUnavailable, res.Status)
	assert.ErrorIs(t, res.Err, gobreaker.ErrOpenState)
}

func TestRedis_MissDoesNotTripBreaker(t *testing.T) {
	mr := miniredis.RunT(t)
	r := newTestRedis(t, mr.Addr())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.Equal(t, StatusMiss, r.Get(ctx, "absent").Status)
	}
	assert.Equal(t, gobreaker.StateClosed, r.BreakerState())
}

func TestRedis_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	r := newTestRedis(t, mr.Addr())

	assert.NoError(t, r.Ping(context.Background()))

	mr.Close()
	assert.Error(t, r.Ping(context.Background()))
}
