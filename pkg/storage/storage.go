package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/plaidlibs/pkg/state"
)

// Storage persists guided-dialogue sessions.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	SaveSession(ctx context.Context, s *state.Session) error
	// LoadSession returns nil, nil when the session does not exist.
	LoadSession(ctx context.Context, id uuid.UUID) (*state.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	// ListSessions returns IDs of sessions that have not expired.
	ListSessions(ctx context.Context) ([]uuid.UUID, error)
}
