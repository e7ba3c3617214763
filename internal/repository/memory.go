package repository

import (
	"context"
	"sort"
	"sync"

	"civdraft/internal/domain"
	"civdraft/pkg/errors"
)

// MemoryStore is an in-memory SessionStore. It backs unit tests and
// single-node deployments that can live without durability.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*domain.Session)}
}

// Get retrieves a session by id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, errors.NewNotFoundError("session not found: " + id)
	}
	return session.Clone(), nil
}

// Put persists the full session document.
func (s *MemoryStore) Put(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session.Clone()
	return nil
}

// Delete removes a session by id.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return errors.NewNotFoundError("session not found: " + id)
	}
	delete(s.sessions, id)
	return nil
}

// ListAll returns every stored session, ordered by id for stable output.
func (s *MemoryStore) ListAll(ctx context.Context) ([]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
