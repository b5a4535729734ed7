package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLocker(client, "test:"), mr
}

func TestLocker_LockUnlock(t *testing.T) {
	l, mr := newTestLocker(t)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "s1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:s1"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:s1"))
}

func TestLocker_Contention(t *testing.T) {
	l, _ := newTestLocker(t)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = l.Lock(short, "shared", 5*time.Second)
	require.ErrorIs(t, err, ErrLockAcquire)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))
	unlock2, err := l.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLocker_UnlockKeepsForeignLock(t *testing.T) {
	l, mr := newTestLocker(t)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "s2", 5*time.Second)
	require.NoError(t, err)

	// lock expired and someone else took it
	require.NoError(t, mr.Set("test:lock:s2", "someone-else"))
	require.NoError(t, unlock(ctx))
	got, err := mr.Get("test:lock:s2")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
