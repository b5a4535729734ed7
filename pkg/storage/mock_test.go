package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/plaidlibs/pkg/state"
)

func TestMockStorage_SaveLoadDelete(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	s := state.NewSession()
	s.Workflow = "lib-ate"
	require.NoError(t, s.Selections.Set(state.Style, "Noir"))
	require.NoError(t, m.SaveSession(ctx, s))

	// later mutations do not leak into the store
	s.Workflow = "storyline"

	loaded, err := m.LoadSession(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "lib-ate", loaded.Workflow)
	assert.Equal(t, "Noir", loaded.Selections.Style)

	ids, err := m.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	require.NoError(t, m.DeleteSession(ctx, s.ID))
	loaded, err = m.LoadSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMockStorage_Errors(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	assert.Error(t, m.SaveSession(ctx, nil))

	boom := errors.New("boom")
	m.SetPingError(boom)
	assert.ErrorIs(t, m.Ping(ctx), boom)
	m.SetPingError(nil)
	assert.NoError(t, m.Ping(ctx))

	m.SetSaveError(boom)
	assert.ErrorIs(t, m.SaveSession(ctx, state.NewSession()), boom)
	assert.Zero(t, m.Saves())
}
