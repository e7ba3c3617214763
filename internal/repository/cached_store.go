package repository

import (
	"context"
	"encoding/json"

	"civdraft/internal/domain"
	"civdraft/pkg/redis"

	"go.uber.org/zap"
)

// CachedStore wraps a SessionStore with a Redis cache. Writes go through to
// the inner store first and refresh the cache afterwards, so a Get right
// after a successful Put always observes the write (from cache or from the
// inner store). Cache failures degrade to the inner store; they never fail
// an operation.
type CachedStore struct {
	inner  SessionStore
	redis  *redis.Client
	logger *zap.Logger
}

// NewCachedStore decorates inner with a Redis cache.
func NewCachedStore(inner SessionStore, redisClient *redis.Client, logger *zap.Logger) *CachedStore {
	return &CachedStore{inner: inner, redis: redisClient, logger: logger}
}

// Get retrieves a session, preferring the cache.
func (s *CachedStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	key := s.redis.KeyBuilder.KeySession(id)

	if cached, err := s.redis.Get(ctx, key); err == nil && cached != "" {
		var session domain.Session
		if err := json.Unmarshal([]byte(cached), &session); err == nil {
			return &session, nil
		}
		// Corrupt entry: drop it and fall through to the inner store.
		s.logger.Warn("dropping undecodable cached session", zap.String("session_id", id))
		_ = s.redis.Delete(ctx, key)
	}

	session, err := s.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx, session)
	return session, nil
}

// Put persists through the inner store, then refreshes the cache.
func (s *CachedStore) Put(ctx context.Context, session *domain.Session) error {
	if err := s.inner.Put(ctx, session); err != nil {
		// The write failed; make sure a stale cached copy cannot mask it.
		_ = s.redis.Delete(ctx, s.redis.KeyBuilder.KeySession(session.ID))
		return err
	}
	s.refresh(ctx, session)
	return nil
}

// Delete removes the session from the inner store and the cache.
func (s *CachedStore) Delete(ctx context.Context, id string) error {
	if err := s.inner.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.redis.Delete(ctx, s.redis.KeyBuilder.KeySession(id)); err != nil {
		s.logger.Warn("failed to invalidate cached session",
			zap.String("session_id", id),
			zap.Error(err))
	}
	return nil
}

// ListAll always hits the inner store; the cache is keyed per session.
func (s *CachedStore) ListAll(ctx context.Context) ([]*domain.Session, error) {
	return s.inner.ListAll(ctx)
}

func (s *CachedStore) refresh(ctx context.Context, session *domain.Session) {
	doc, err := json.Marshal(session)
	if err != nil {
		return
	}
	key := s.redis.KeyBuilder.KeySession(session.ID)
	if err := s.redis.Set(ctx, key, string(doc), redis.TTLSession); err != nil {
		s.logger.Warn("failed to cache session",
			zap.String("session_id", session.ID),
			zap.Error(err))
	}
}
