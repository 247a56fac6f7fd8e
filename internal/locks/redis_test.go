package locks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLocker(t *testing.T, ttl time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	l := NewRedisLocker(client, ttl)
	l.retryDelay = 5 * time.Millisecond
	return l, mr
}

func TestRedisLockerAcquireAndRelease(t *testing.T) {
	l, mr := newTestRedisLocker(t, 0)
	assert.Equal(t, defaultLockTTL, l.ttl)

	unlock, err := l.Lock(context.Background(), "route_plan:p1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("binroute:lock:route_plan:p1"))

	unlock()
	assert.False(t, mr.Exists("binroute:lock:route_plan:p1"))
	unlock()
}

func TestRedisLockerContention(t *testing.T) {
	l, _ := newTestRedisLocker(t, time.Minute)

	unlock, err := l.Lock(context.Background(), "route_plan:p1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "route_plan:p1")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	other, err := l.Lock(context.Background(), "route_plan:p2")
	require.NoError(t, err)
	other()

	unlock()
	again, err := l.Lock(context.Background(), "route_plan:p1")
	require.NoError(t, err)
	again()
}

func TestRedisLockerWaiterAcquiresAfterRelease(t *testing.T) {
	l, _ := newTestRedisLocker(t, time.Minute)

	unlock, err := l.Lock(context.Background(), "route_plan:p1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	acquired := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		u, err := l.Lock(ctx, "route_plan:p1")
		if assert.NoError(t, err) {
			close(acquired)
			u()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("lock acquired while still held")
	case <-time.After(30 * time.Millisecond):
	}

	unlock()
	wg.Wait()
}

func TestRedisLockerExpiredHolderDoesNotReleaseNewOwner(t *testing.T) {
	l, mr := newTestRedisLocker(t, time.Second)

	stale, err := l.Lock(context.Background(), "route_plan:p1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	fresh, err := l.Lock(context.Background(), "route_plan:p1")
	require.NoError(t, err)
	owner, err := mr.Get("binroute:lock:route_plan:p1")
	require.NoError(t, err)

	stale()
	current, err := mr.Get("binroute:lock:route_plan:p1")
	require.NoError(t, err)
	assert.Equal(t, owner, current)

	fresh()
	assert.False(t, mr.Exists("binroute:lock:route_plan:p1"))
}

func TestNewRedisLockerFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	l, err := NewRedisLockerFromURL(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer l.Close()

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()

	_, err = NewRedisLockerFromURL(context.Background(), "not-a-url://")
	assert.Error(t, err)
}
