package auth

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community/config"
	"community/internal/domain/service"
	"community/internal/errors"
)

func newTestConfig(accessTTL, refreshTTL time.Duration) *config.Config {
	cfg := &config.Config{Auth: &config.AuthConfig{AccessTokenTTL: accessTTL, RefreshTokenTTL: refreshTTL}}
	cfg.SecretKey.Access = "test_access_secret_key_very_long_for_testing"
	cfg.SecretKey.Refresh = "test_refresh_secret_key_very_long_for_testing"

	return cfg
}

func newTestJWTService(t *testing.T, accessTTL, refreshTTL time.Duration) service.TokenService {
	t.Helper()

	svc, err := NewJWTService(newTestConfig(accessTTL, refreshTTL))
	require.NoError(t, err)

	return svc
}

func TestJWTService_IssueAndValidateTokens(t *testing.T) {
	svc := newTestJWTService(t, time.Minute, time.Hour)

	accessToken, err := svc.IssueAccessToken(42, "a@example.com")
	require.NoError(t, err)
	refreshToken, err := svc.IssueRefreshToken(42)
	require.NoError(t, err)

	accessClaims, err := svc.ValidateAccessToken(accessToken)
	require.NoError(t, err)
	subject, err := svc.ExtractSubject(accessClaims)
	require.NoError(t, err)
	assert.Equal(t, int64(42), subject)
	email, ok := svc.ExtractEmail(accessClaims)
	assert.True(t, ok)
	assert.Equal(t, "a@example.com", email)
	assert.Equal(t, service.TokenTypeAccess, accessClaims.Type)
	assert.NotEmpty(t, accessClaims.ID)

	refreshClaims, err := svc.ValidateRefreshToken(refreshToken)
	require.NoError(t, err)
	_, ok = svc.ExtractEmail(refreshClaims)
	assert.False(t, ok)
	expiry, ok := svc.ExtractExpiry(refreshClaims)
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)
}

func TestJWTService_TokensAreUnique(t *testing.T) {
	svc := newTestJWTService(t, time.Minute, time.Hour)

	first, err := svc.IssueRefreshToken(7)
	require.NoError(t, err)
	second, err := svc.IssueRefreshToken(7)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestJWTService_ExpiryBoundary(t *testing.T) {
	svc := newTestJWTService(t, time.Millisecond, time.Millisecond)

	accessToken, err := svc.IssueAccessToken(1, "a@example.com")
	require.NoError(t, err)
	refreshToken, err := svc.IssueRefreshToken(1)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = svc.ValidateAccessToken(accessToken)
	assert.ErrorIs(t, err, service.ErrTokenExpired)
	assert.ErrorIs(t, err, service.ErrAuthenticationFailed)

	_, err = svc.ValidateRefreshToken(refreshToken)
	assert.ErrorIs(t, err, service.ErrTokenExpired)

	claims, err := svc.DecodeRefreshToken(refreshToken)
	require.NoError(t, err, "expired refresh tokens still decode")
	subject, err := svc.ExtractSubject(claims)
	require.NoError(t, err)
	assert.Equal(t, int64(1), subject)
}

func TestJWTService_SubSecondTTLSurvivesEncoding(t *testing.T) {
	svc := newTestJWTService(t, 1500*time.Millisecond, time.Hour)
	assert.Equal(t, time.Millisecond, jwt.TimePrecision)

	token, err := svc.IssueAccessToken(5, "ms@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestJWTService_ValidationErrors(t *testing.T) {
	svc := newTestJWTService(t, time.Minute, time.Hour)
	cfg := newTestConfig(time.Minute, time.Hour)

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)

		return token
	}
	validClaims := func(sub string) *service.Claims {
		return &service.Claims{
			Type: service.TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   sub,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		}
	}
	refreshToken, err := svc.IssueRefreshToken(3)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:    "not a jwt",
			token:   "clearly-not-a-jwt-token-format",
			wantErr: service.ErrTokenInvalid,
		},
		{
			name:    "wrong secret",
			token:   sign(jwt.SigningMethodHS256, []byte("another-secret"), validClaims("3")),
			wantErr: service.ErrTokenInvalid,
		},
		{
			name:    "unsigned token",
			token:   sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims("3")),
			wantErr: service.ErrTokenUnsupported,
		},
		{
			name:    "refresh token used as access token",
			token:   refreshToken,
			wantErr: service.ErrTokenInvalid,
		},
		{
			name:    "non numeric subject",
			token:   sign(jwt.SigningMethodHS256, []byte(cfg.SecretKey.Access), validClaims("alice")),
			wantErr: service.ErrTokenMalformed,
		},
		{
			name: "missing expiry",
			token: sign(jwt.SigningMethodHS256, []byte(cfg.SecretKey.Access), &service.Claims{
				Type:             service.TokenTypeAccess,
				RegisteredClaims: jwt.RegisteredClaims{Subject: "3"},
			}),
			wantErr: service.ErrTokenMalformed,
		},
		{
			name: "wrong type claim",
			token: sign(jwt.SigningMethodHS256, []byte(cfg.SecretKey.Access), &service.Claims{
				Type: service.TokenTypeRefresh,
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "3",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
				},
			}),
			wantErr: service.ErrTokenUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateAccessToken(tt.token)

			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, errors.Is(err, service.ErrAuthenticationFailed))
		})
	}
}

func TestJWTService_ExtractSubject(t *testing.T) {
	svc := newTestJWTService(t, time.Minute, time.Hour)

	_, err := svc.ExtractSubject(nil)
	assert.ErrorIs(t, err, service.ErrTokenMalformed)

	claims := &service.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: strconv.Itoa(99)}}
	subject, err := svc.ExtractSubject(claims)
	require.NoError(t, err)
	assert.Equal(t, int64(99), subject)
}

func TestJWTService_EmptySecrets(t *testing.T) {
	jwtService, err := NewJWTService(&config.Config{})

	assert.Error(t, err)
	assert.Nil(t, jwtService)
	assert.Contains(t, err.Error(), "jwt secrets must be provided")
}

func TestJWTService_TTLs(t *testing.T) {
	svc, err := NewJWTService(newTestConfig(0, 0))
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, svc.AccessTTL())
	assert.Equal(t, 14*24*time.Hour, svc.RefreshTTL())
}
