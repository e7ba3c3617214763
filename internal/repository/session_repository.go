package repository

import (
	"context"
	"encoding/json"

	"civdraft/internal/domain"
	"civdraft/pkg/database"
	"civdraft/pkg/errors"

	"github.com/jackc/pgx/v5"
)

// PostgresStore persists sessions as one JSONB document per row. The
// document is the source of truth; phase and creator are duplicated into
// columns only for operational queries.
type PostgresStore struct {
	db *database.PostgresDB
}

// NewPostgresStore creates a Postgres-backed session store.
func NewPostgresStore(db *database.PostgresDB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get retrieves a session by id.
func (r *PostgresStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT document FROM draft_sessions WHERE id = $1`

	var doc []byte
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(&doc)
	if err == pgx.ErrNoRows {
		return nil, errors.NewNotFoundError("session not found: " + id)
	}
	if err != nil {
		return nil, errors.NewIOError("failed to load session", err)
	}

	var session domain.Session
	if err := json.Unmarshal(doc, &session); err != nil {
		return nil, errors.NewIOError("failed to decode session document", err)
	}
	return &session, nil
}

// Put persists the full session document, creating or replacing it.
func (r *PostgresStore) Put(ctx context.Context, session *domain.Session) error {
	doc, err := json.Marshal(session)
	if err != nil {
		return errors.NewIOError("failed to encode session document", err)
	}

	query := `
		INSERT INTO draft_sessions (id, creator_id, phase, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE
		SET phase = EXCLUDED.phase, document = EXCLUDED.document, updated_at = now()
	`

	_, err = r.db.Pool.Exec(ctx, query,
		session.ID,
		string(session.CreatorID),
		string(session.Phase),
		doc,
		session.CreatedAt,
	)
	if err != nil {
		return errors.NewIOError("failed to save session", err)
	}
	return nil
}

// Delete removes a session by id.
func (r *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM draft_sessions WHERE id = $1`, id)
	if err != nil {
		return errors.NewIOError("failed to delete session", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewNotFoundError("session not found: " + id)
	}
	return nil
}

// ListAll returns every stored session, oldest first.
func (r *PostgresStore) ListAll(ctx context.Context) ([]*domain.Session, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT document FROM draft_sessions ORDER BY created_at`)
	if err != nil {
		return nil, errors.NewIOError("failed to list sessions", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, errors.NewIOError("failed to scan session row", err)
		}
		var session domain.Session
		if err := json.Unmarshal(doc, &session); err != nil {
			return nil, errors.NewIOError("failed to decode session document", err)
		}
		sessions = append(sessions, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIOError("failed to iterate session rows", err)
	}
	return sessions, nil
}
