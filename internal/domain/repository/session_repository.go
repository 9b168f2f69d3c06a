package repository

import (
	"context"
	"errors"

	"community/internal/domain/entity"
)

// ErrSessionNotFound is returned when the session id was never issued or its TTL elapsed.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository stores cookie sessions. Expiry is owned by the backing store.
type SessionRepository interface {
	// Create stores a new session for the principal and returns its random id.
	Create(ctx context.Context, userID int64, nickname string) (*entity.Session, error)

	// Get resolves a session id. It always reads the backing store.
	Get(ctx context.Context, sessionID string) (*entity.Session, error)

	// Remove deletes the session and reports whether it existed.
	Remove(ctx context.Context, sessionID string) (bool, error)
}
