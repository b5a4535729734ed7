// Package session serialises access to stored sessions. Every read-modify-write of
// one session runs under a per-ID mutex, and optionally a distributed lock shared
// with other replicas.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	istorage "github.com/jwebster45206/plaidlibs/internal/storage"
	"github.com/jwebster45206/plaidlibs/pkg/state"
	"github.com/jwebster45206/plaidlibs/pkg/storage"
)

// ErrSessionNotFound is returned when an ID has no stored session.
var ErrSessionNotFound = errors.New("session not found")

// DefaultLockTTL bounds how long a crashed holder can block a session.
const DefaultLockTTL = 30 * time.Second

// Locker takes cross-process locks. *storage.Locker implements it.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (istorage.UnlockFunc, error)
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager hands out sessions from a Storage with per-session locking. Lock
// entries are reference counted and dropped when nobody holds or waits on them.
type Manager struct {
	store Storage

	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry

	locker  Locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Storage is the subset of storage.Storage the manager needs.
type Storage interface {
	SaveSession(ctx context.Context, s *state.Session) error
	LoadSession(ctx context.Context, id uuid.UUID) (*state.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
}

var _ Storage = (storage.Storage)(nil)

type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(l Locker) Option {
	return func(m *Manager) { m.locker = l }
}

func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.lockTTL = ttl }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func NewManager(store Storage, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[uuid.UUID]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) acquire(id uuid.UUID) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.locks[id]
	if !ok {
		e = &lockEntry{}
		m.locks[id] = e
	}
	e.refs++
	return e
}

func (m *Manager) release(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.locks[id]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(m.locks, id)
	}
}

// activeLocks reports how many lock entries are alive. Used by tests.
func (m *Manager) activeLocks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// WithLock runs fn while holding the session's lock.
func (m *Manager) WithLock(ctx context.Context, id uuid.UUID, fn func(context.Context) error) error {
	e := m.acquire(id)
	e.mu.Lock()
	defer func() {
		e.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id.String(), m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// the caller's context may already be done
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", id, "error", err)
			}
		}()
	}
	return fn(ctx)
}

// Create stores a new session.
func (m *Manager) Create(ctx context.Context, s *state.Session) error {
	return m.WithLock(ctx, s.ID, func(ctx context.Context) error {
		return m.store.SaveSession(ctx, s)
	})
}

// Load returns ErrSessionNotFound when id is unknown.
func (m *Manager) Load(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	var s *state.Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		s, err = m.load(ctx, id)
		return err
	})
	return s, err
}

func (m *Manager) load(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	s, err := m.store.LoadSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if s == nil {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Save(ctx context.Context, s *state.Session) error {
	return m.WithLock(ctx, s.ID, func(ctx context.Context) error {
		return m.store.SaveSession(ctx, s)
	})
}

func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.DeleteSession(ctx, id)
	})
}

// Update loads the session, applies fn and saves the result, all under the lock.
// The session is saved even when fn returns an error, so errors recorded on the
// session persist. fn's error is returned unless saving fails.
func (m *Manager) Update(ctx context.Context, id uuid.UUID, fn func(*state.Session) error) (*state.Session, error) {
	var s *state.Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		s, err = m.load(ctx, id)
		if err != nil {
			return err
		}
		fnErr := fn(s)
		if err := m.store.SaveSession(ctx, s); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return fnErr
	})
	return s, err
}
