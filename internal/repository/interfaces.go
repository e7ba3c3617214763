package repository

import (
	"context"

	"civdraft/internal/domain"
)

// SessionStore defines persistence for draft sessions. Implementations must
// provide read-after-write consistency: a Get immediately after a successful
// Put for the same id observes the write.
//
// Get and related methods return not-found and I/O failures as
// pkg/errors.AppError values so the service layer can surface them without
// translation.
type SessionStore interface {
	// Get retrieves a session by id. Callers receive their own copy and may
	// mutate it freely; nothing is shared until Put.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Put persists the full session document, creating or replacing it.
	Put(ctx context.Context, session *domain.Session) error

	// Delete removes a session by id.
	Delete(ctx context.Context, id string) error

	// ListAll returns every stored session.
	ListAll(ctx context.Context) ([]*domain.Session, error)
}
