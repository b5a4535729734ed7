package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	istorage "github.com/jwebster45206/plaidlibs/internal/storage"
	"github.com/jwebster45206/plaidlibs/pkg/state"
	"github.com/jwebster45206/plaidlibs/pkg/storage"
)

// slowStore delays reads so unserialised read-modify-write cycles lose updates.
type slowStore struct {
	*storage.MockStorage
}

func (s slowStore) LoadSession(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	time.Sleep(2 * time.Millisecond)
	return s.MockStorage.LoadSession(ctx, id)
}

func TestManager_UpdateSerialises(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager(slowStore{storage.NewMockStorage()})
	ctx := context.Background()
	s := state.NewSession()
	require.NoError(t, m.Create(ctx, s))

	const writers = 20
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Update(ctx, s.ID, func(s *state.Session) error {
				s.SeedsCollected++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := m.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, writers, got.SeedsCollected)
	assert.Zero(t, m.activeLocks())
}

func TestManager_NotFound(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager(storage.NewMockStorage())
	_, err := m.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	called := false
	_, err = m.Update(context.Background(), uuid.New(), func(*state.Session) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.False(t, called)
}

func TestManager_UpdateSavesOnError(t *testing.T) {
	store := storage.NewMockStorage()
	m := NewManager(store)
	ctx := context.Background()
	s := state.NewSession()
	require.NoError(t, m.Create(ctx, s))

	bad := errors.New("invalid choice")
	_, err := m.Update(ctx, s.ID, func(s *state.Session) error {
		s.LastError = bad.Error()
		return bad
	})
	require.ErrorIs(t, err, bad)

	got, err := m.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "invalid choice", got.LastError)
}

func TestManager_SaveFailure(t *testing.T) {
	store := storage.NewMockStorage()
	m := NewManager(store)
	ctx := context.Background()
	s := state.NewSession()
	require.NoError(t, m.Create(ctx, s))

	store.SetSaveError(errors.New("disk full"))
	_, err := m.Update(ctx, s.ID, func(*state.Session) error { return nil })
	assert.ErrorContains(t, err, "disk full")
}

func TestManager_Delete(t *testing.T) {
	m := NewManager(storage.NewMockStorage())
	ctx := context.Background()
	s := state.NewSession()
	require.NoError(t, m.Save(ctx, s))
	require.NoError(t, m.Delete(ctx, s.ID))
	_, err := m.Load(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := istorage.NewLocker(client, "test:")
	store := istorage.NewFromClient(client, nil)
	m := NewManager(store, WithLocker(locker), WithLockTTL(time.Second))
	ctx := context.Background()

	s := state.NewSession()
	require.NoError(t, m.Create(ctx, s))

	// another replica holds the lock
	unlock, err := locker.Lock(ctx, s.ID.String(), time.Second)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	_, err = m.Load(short, s.ID)
	require.ErrorIs(t, err, istorage.ErrLockAcquire)

	require.NoError(t, unlock(ctx))
	got, err := m.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.False(t, mr.Exists("test:lock:"+s.ID.String()))
}
