// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"community/config"
	"community/internal/domain/service"
	"community/internal/errors"
)

var (
	errUnsupportedAlgorithm = errors.New("unexpected signing method")

	timePrecisionOnce sync.Once
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	accessSecret  []byte        // Secret key for signing access tokens.
	refreshSecret []byte        // Secret key for signing refresh tokens.
	accessTTL     time.Duration // Time-to-live for access tokens.
	refreshTTL    time.Duration // Time-to-live for refresh tokens.
	now           func() time.Time
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
//
// The first call sets the process-wide jwt.TimePrecision to milliseconds, so
// sub-second TTLs survive the exp claim. Every token in the process is then
// encoded with millisecond NumericDates.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}

	timePrecisionOnce.Do(func() {
		jwt.TimePrecision = time.Millisecond
	})

	accessTTL, refreshTTL := 15*time.Minute, 14*24*time.Hour
	if cfg.Auth != nil {
		if cfg.Auth.AccessTokenTTL > 0 {
			accessTTL = cfg.Auth.AccessTokenTTL
		}
		if cfg.Auth.RefreshTokenTTL > 0 {
			refreshTTL = cfg.Auth.RefreshTokenTTL
		}
	}

	return &jwtService{
		accessSecret:  []byte(cfg.SecretKey.Access),
		refreshSecret: []byte(cfg.SecretKey.Refresh),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

func (s *jwtService) IssueAccessToken(userID int64, email string) (string, error) {
	return s.issue(userID, email, service.TokenTypeAccess, s.accessTTL, s.accessSecret)
}

func (s *jwtService) IssueRefreshToken(userID int64) (string, error) {
	return s.issue(userID, "", service.TokenTypeRefresh, s.refreshTTL, s.refreshSecret)
}

func (s *jwtService) ValidateAccessToken(token string) (*service.Claims, error) {
	return s.validate(token, service.TokenTypeAccess, s.accessSecret)
}

func (s *jwtService) ValidateRefreshToken(token string) (*service.Claims, error) {
	return s.validate(token, service.TokenTypeRefresh, s.refreshSecret)
}

// DecodeRefreshToken checks the signature only, so expired tokens still decode.
func (s *jwtService) DecodeRefreshToken(token string) (*service.Claims, error) {
	claims := &service.Claims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, err := parser.ParseWithClaims(token, claims, s.keyFunc(s.refreshSecret)); err != nil {
		return nil, classify(err)
	}
	if claims.Type != service.TokenTypeRefresh {
		return nil, errors.Wrapf(service.ErrTokenUnsupported, "expected %s token, got %q", service.TokenTypeRefresh, claims.Type)
	}

	return claims, nil
}

func (s *jwtService) ExtractSubject(claims *service.Claims) (int64, error) {
	if claims == nil || claims.Subject == "" {
		return 0, errors.Wrap(service.ErrTokenMalformed, "missing subject")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, errors.Wrapf(service.ErrTokenMalformed, "subject %q is not a user id", claims.Subject)
	}

	return userID, nil
}

func (s *jwtService) ExtractEmail(claims *service.Claims) (string, bool) {
	if claims == nil || claims.Email == "" {
		return "", false
	}

	return claims.Email, true
}

func (s *jwtService) ExtractExpiry(claims *service.Claims) (time.Time, bool) {
	if claims == nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}

func (s *jwtService) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *jwtService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// issue is a private helper to create a JWT with specific claims.
func (s *jwtService) issue(userID int64, email, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	now := s.now()
	claims := service.Claims{
		Email: email,
		Type:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", errors.Wrapf(err, "failed to sign %s token", tokenType)
	}

	return signed, nil
}

func (s *jwtService) validate(token, tokenType string, secret []byte) (*service.Claims, error) {
	claims := &service.Claims{}
	parser := jwt.NewParser(jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if _, err := parser.ParseWithClaims(token, claims, s.keyFunc(secret)); err != nil {
		return nil, classify(err)
	}

	if claims.Type != tokenType {
		return nil, errors.Wrapf(service.ErrTokenUnsupported, "expected %s token, got %q", tokenType, claims.Type)
	}
	if _, err := s.ExtractSubject(claims); err != nil {
		return nil, err
	}

	return claims, nil
}

func (s *jwtService) keyFunc(secret []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnsupportedAlgorithm
		}

		return secret, nil
	}
}

// classify maps jwt parser failures onto the token error taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, errUnsupportedAlgorithm):
		return errors.Wrap(service.ErrTokenUnsupported, err.Error())
	case errors.Is(err, jwt.ErrTokenExpired):
		return errors.Wrap(service.ErrTokenExpired, err.Error())
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return errors.Wrap(service.ErrTokenMalformed, err.Error())
	default:
		return errors.Wrap(service.ErrTokenInvalid, err.Error())
	}
}
