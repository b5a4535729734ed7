package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/plaidlibs/pkg/state"
)

func newTestRedis(t *testing.T, opts ...Option) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFromClient(client, nil, opts...), mr
}

func TestRedisStorage_SaveLoad(t *testing.T) {
	r, mr := newTestRedis(t, WithPrefix("test:"))
	ctx := context.Background()

	s := state.NewSession()
	s.Workflow = "lib-ate"
	s.CurrentStep = 5
	s.Seeds.Set("name", "Rowan")
	require.NoError(t, s.Selections.Set(state.Genre, "Mystery"))
	require.NoError(t, r.SaveSession(ctx, s))

	assert.True(t, mr.Exists("test:"+s.ID.String()))
	assert.Equal(t, DefaultTTL, mr.TTL("test:"+s.ID.String()))

	loaded, err := r.LoadSession(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, 5, loaded.CurrentStep)
	assert.Equal(t, "Mystery", loaded.Selections.Genre)
	assert.Equal(t, "Rowan", loaded.Seeds.GetOr("name", ""))
}

func TestRedisStorage_LoadMissing(t *testing.T) {
	r, _ := newTestRedis(t)
	loaded, err := r.LoadSession(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_LoadCorrupt(t *testing.T) {
	r, mr := newTestRedis(t)
	id := uuid.New()
	require.NoError(t, mr.Set(DefaultPrefix+id.String(), "{not json"))

	_, err := r.LoadSession(context.Background(), id)
	assert.Error(t, err)
}

func TestRedisStorage_DeleteAndList(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	a, b := state.NewSession(), state.NewSession()
	require.NoError(t, r.SaveSession(ctx, a))
	require.NoError(t, r.SaveSession(ctx, b))

	ids, err := r.ListSessions(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, ids)

	require.NoError(t, r.DeleteSession(ctx, a.ID))
	ids, err = r.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.ID}, ids)

	loaded, err := r.LoadSession(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_ListPrunesExpired(t *testing.T) {
	r, mr := newTestRedis(t, WithTTL(time.Minute))
	ctx := context.Background()

	old := state.NewSession()
	require.NoError(t, r.SaveSession(ctx, old))
	// backdate its index score
	mr.ZAdd(r.indexKey(), float64(time.Now().Add(-time.Hour).Unix()), old.ID.String())

	fresh := state.NewSession()
	require.NoError(t, r.SaveSession(ctx, fresh))

	ids, err := r.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{fresh.ID}, ids)
}

func TestRedisStorage_NoTTL(t *testing.T) {
	r, mr := newTestRedis(t, WithTTL(0))
	s := state.NewSession()
	require.NoError(t, r.SaveSession(context.Background(), s))
	assert.Zero(t, mr.TTL(DefaultPrefix+s.ID.String()))
}

func TestRedisStorage_Ping(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()
	require.NoError(t, r.Ping(ctx))
	require.NoError(t, r.WaitForConnection(ctx))

	mr.Close()
	assert.Error(t, r.Ping(ctx))
}

func TestNewRedisStorage_URL(t *testing.T) {
	_, err := NewRedisStorage("redis://:bad url", nil)
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	r, err := NewRedisStorage("redis://"+mr.Addr()+"/0", nil)
	require.NoError(t, err)
	defer r.Close()
	assert.NoError(t, r.Ping(context.Background()))
}
