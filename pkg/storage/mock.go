package storage

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/plaidlibs/pkg/state"
)

// MockStorage is an in-memory Storage for tests. Sessions are stored as JSON so
// callers never share pointers with the store.
type MockStorage struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID][]byte
	pingError error
	saveError error
	saves     int
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[uuid.UUID][]byte),
	}
}

// SetPingError configures Ping to fail with err. nil restores success.
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures SaveSession to fail with err.
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Saves reports how many successful SaveSession calls were made.
func (m *MockStorage) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSession(ctx context.Context, s *state.Session) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.sessions[s.ID] = data
	m.saves++
	return nil
}

func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	m.mu.RLock()
	data, exists := m.sessions[id]
	m.mu.RUnlock()
	if !exists {
		return nil, nil
	}
	var s state.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MockStorage) ListSessions(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return slices.Compare(a[:], b[:]) })
	return ids, nil
}
