package repository

import (
	"context"
	"errors"

	"community/internal/domain/entity"
)

// Domain-specific errors for refresh token persistence.
var (
	// ErrRefreshTokenNotFound is returned when the presented token is not the principal's live token.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

// RefreshTokenRepository is the durable store behind the refresh-token ledger.
// Implementations keep at most one live token per principal.
type RefreshTokenRepository interface {
	// Save stores the record and supersedes any previous token of the same principal.
	Save(ctx context.Context, token *entity.RefreshToken) error

	// FindByUserID returns the live (unexpired) records of the principal, newest first.
	// An empty slice is returned when there is none.
	FindByUserID(ctx context.Context, userID int64) ([]*entity.RefreshToken, error)

	// Rotate atomically replaces oldToken with next. It fails with ErrRefreshTokenNotFound
	// when oldToken is no longer the principal's live token, including when a concurrent
	// rotation already consumed it.
	Rotate(ctx context.Context, oldToken string, next *entity.RefreshToken) error

	// DeleteByUserID removes every record of the principal.
	DeleteByUserID(ctx context.Context, userID int64) error

	// DeleteExpired removes expired records and returns how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
