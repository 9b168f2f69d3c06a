// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"community/internal/domain/entity"
)

// --- Input DTOs ---

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// LoginOutput returns the generated tokens after a successful token-mode login.
type LoginOutput struct {
	AccessToken   string
	RefreshToken  string
	RefreshMaxAge int64 // Remaining lifetime of RefreshToken in seconds, used as the cookie max-age.
	User          *entity.User
}

// ReissueOutput returns the rotated token pair.
type ReissueOutput struct {
	AccessToken   string
	RefreshToken  string
	RefreshMaxAge int64
}

// SessionLoginOutput returns the session created by a session-mode login.
type SessionLoginOutput struct {
	SessionID string
	MaxAge    int64
	User      *entity.User
}

// CredentialUsecase verifies email and password pairs.
type CredentialUsecase interface {
	// Verify returns the user owning the credentials or ErrInvalidCredentials.
	Verify(ctx context.Context, email, password string) (*entity.User, error)
}

// AuthUsecase is the token-mode auth orchestrator.
type AuthUsecase interface {
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)
	// Logout revokes every refresh token of the principal owning refreshToken.
	// An absent or unreadable token is a no-op.
	Logout(ctx context.Context, refreshToken string) error
	Reissue(ctx context.Context, refreshToken string) (*ReissueOutput, error)
	// Authenticate validates an access token and returns its principal.
	Authenticate(ctx context.Context, accessToken string) (*entity.Principal, error)
}

// RefreshTokenUsecase is the refresh-token ledger.
type RefreshTokenUsecase interface {
	Save(ctx context.Context, token string, userID int64, email string, expiresAt time.Time) error
	// Exists reports whether token is the principal's live refresh token.
	// Only infrastructure failures are returned as errors.
	Exists(ctx context.Context, token string) (bool, error)
	// Reissue always rotates: the old token is consumed and a new pair is minted.
	Reissue(ctx context.Context, oldToken string) (*ReissueOutput, error)
	RevokeAll(ctx context.Context, userID int64) error
	// RemainingSeconds returns exp minus now, negative once expired and 0 for unreadable tokens.
	RemainingSeconds(token string) int64
	SweepExpired(ctx context.Context) (int64, error)
}

// SessionAuthUsecase is the cookie-session auth orchestrator.
type SessionAuthUsecase interface {
	Login(ctx context.Context, input LoginInput) (*SessionLoginOutput, error)
	Logout(ctx context.Context, sessionID string) error
	Resolve(ctx context.Context, sessionID string) (*entity.Principal, error)
}
