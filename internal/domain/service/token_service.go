package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrAuthenticationFailed is the parent of every token validation failure.
var ErrAuthenticationFailed = errors.New("authentication failed")

// Token validation failures. Each one matches ErrAuthenticationFailed under errors.Is.
var (
	ErrTokenInvalid     = &tokenError{msg: "token signature or structure is invalid"}
	ErrTokenExpired     = &tokenError{msg: "token is expired"}
	ErrTokenUnsupported = &tokenError{msg: "token algorithm or type is unsupported"}
	ErrTokenMalformed   = &tokenError{msg: "token claims are malformed"}
)

type tokenError struct {
	msg string
}

func (e *tokenError) Error() string {
	return e.msg
}

func (e *tokenError) Unwrap() error {
	return ErrAuthenticationFailed
}

// Claims defines the custom claims for the JWT tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// IssueAccessToken mints a short-lived token carrying the principal id and email.
	IssueAccessToken(userID int64, email string) (string, error)

	// IssueRefreshToken mints a long-lived token carrying only the principal id.
	IssueRefreshToken(userID int64) (string, error)

	// ValidateAccessToken verifies signature, expiry and type of an access token.
	ValidateAccessToken(token string) (*Claims, error)

	// ValidateRefreshToken verifies signature, expiry and type of a refresh token.
	ValidateRefreshToken(token string) (*Claims, error)

	// ExtractSubject returns the principal id of validated claims.
	ExtractSubject(claims *Claims) (int64, error)

	// ExtractEmail returns the email claim, false when the token has none.
	ExtractEmail(claims *Claims) (string, bool)

	// ExtractExpiry returns the exp claim, false when the token has none.
	ExtractExpiry(claims *Claims) (time.Time, bool)

	// DecodeRefreshToken verifies the signature of a refresh token but not its expiry,
	// so callers can still read the claims of an expired token.
	DecodeRefreshToken(token string) (*Claims, error)

	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}
