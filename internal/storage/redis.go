package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/plaidlibs/pkg/state"
	"github.com/jwebster45206/plaidlibs/pkg/storage"
)

const (
	DefaultPrefix = "plaidlibs:session:"
	DefaultTTL    = 24 * time.Hour
	// index score for sessions that never expire
	noExpiryScore = 4102444800
)

// RedisStorage keeps sessions as JSON blobs with a TTL, plus a sorted-set index
// scored by expiry time so ListSessions can skip expired entries.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
	prefix string
	ttl    time.Duration
}

var _ storage.Storage = (*RedisStorage)(nil)

type Option func(*RedisStorage)

// WithTTL sets session expiry. Zero keeps sessions forever.
func WithTTL(ttl time.Duration) Option {
	return func(r *RedisStorage) { r.ttl = ttl }
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(r *RedisStorage) { r.prefix = prefix }
}

// NewRedisStorage connects to redisURL, which is either host:port or a redis:// URL.
func NewRedisStorage(redisURL string, logger *slog.Logger, opts ...Option) (*RedisStorage, error) {
	options := &redis.Options{Addr: redisURL}
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		options = parsed
	}
	return NewFromClient(redis.NewClient(options), logger, opts...), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client, logger *slog.Logger, opts ...Option) *RedisStorage {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &RedisStorage{
		client: client,
		logger: logger,
		prefix: DefaultPrefix,
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Client exposes the underlying client so a Locker can share the connection.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

func (r *RedisStorage) key(id uuid.UUID) string {
	return r.prefix + id.String()
}

func (r *RedisStorage) indexKey() string {
	return r.prefix + "index"
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := range maxRetries {
		err := r.Ping(ctx)
		if err == nil {
			r.logger.Info("Redis connection established")
			return nil
		}
		r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
		case <-time.After(retryDelay):
		}
	}
	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func (r *RedisStorage) SaveSession(ctx context.Context, s *state.Session) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}
	s.Touch()

	data, err := json.Marshal(s)
	if err != nil {
		r.logger.Error("Failed to marshal session", "session_id", s.ID, "error", err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	score := float64(noExpiryScore)
	if r.ttl > 0 {
		score = float64(time.Now().Add(r.ttl).Unix())
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(s.ID), data, r.ttl)
	pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: score, Member: s.ID.String()})
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to save session", "session_id", s.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadSession(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Session not found", "session_id", id)
			return nil, nil
		}
		r.logger.Error("Failed to load session", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var s state.Session
	if err := json.Unmarshal(data, &s); err != nil {
		r.logger.Error("Failed to unmarshal session", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key(id))
	pipe.ZRem(ctx, r.indexKey(), id.String())
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to delete session", "session_id", id, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListSessions prunes expired index entries and returns the rest, soonest expiry first.
func (r *RedisStorage) ListSessions(ctx context.Context) ([]uuid.UUID, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := r.client.ZRemRangeByScore(ctx, r.indexKey(), "-inf", "("+now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}
	members, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			r.logger.Warn("Skipping malformed session index entry", "member", m)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
