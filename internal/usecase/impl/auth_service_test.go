package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community/internal/domain/entity"
	domainerrors "community/internal/domain/errors"
	"community/internal/errors"
	"community/internal/infra/auth"
	"community/internal/infra/redis"
	"community/internal/testutil"
	"community/internal/usecase"
)

func TestAuthService_Login_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	user := testutil.NewUserBuilder().WithEmail("login@example.com").Build(t, env.db)
	srv := env.authService()

	output, err := srv.Login(ctx, usecase.LoginInput{Email: "login@example.com", Password: testutil.DefaultPassword})
	require.NoError(t, err)

	assert.Equal(t, user.ID, output.User.ID)
	assert.NotEmpty(t, output.AccessToken)
	assert.NotEmpty(t, output.RefreshToken)
	assert.InDelta(t, (14 * 24 * time.Hour).Seconds(), float64(output.RefreshMaxAge), 5)

	exists, err := env.refreshTokenService().Exists(ctx, output.RefreshToken)
	require.NoError(t, err)
	assert.True(t, exists)

	principal, err := srv.Authenticate(ctx, output.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, &entity.Principal{UserID: user.ID, Email: "login@example.com"}, principal)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	testutil.NewUserBuilder().WithEmail("known@example.com").Build(t, env.db)
	srv := env.authService()

	tests := []struct {
		name  string
		input usecase.LoginInput
	}{
		{name: "wrong password", input: usecase.LoginInput{Email: "known@example.com", Password: "other-pass1!"}},
		{name: "unknown email", input: usecase.LoginInput{Email: "ghost@example.com", Password: testutil.DefaultPassword}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := srv.Login(ctx, tt.input)
			require.Error(t, err)
			assert.Nil(t, output)
			assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
		})
	}
}

func TestAuthService_Login_RevokesPreviousRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	testutil.NewUserBuilder().WithEmail("twice@example.com").Build(t, env.db)
	srv := env.authService()
	input := usecase.LoginInput{Email: "twice@example.com", Password: testutil.DefaultPassword}

	first, err := srv.Login(ctx, input)
	require.NoError(t, err)
	second, err := srv.Login(ctx, input)
	require.NoError(t, err)

	ledger := env.refreshTokenService()
	exists, err := ledger.Exists(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = ledger.Exists(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAuthService_Reissue_RotatesExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	user := testutil.NewUserBuilder().WithEmail("rotate@example.com").Build(t, env.db)
	srv := env.authService()

	login, err := srv.Login(ctx, usecase.LoginInput{Email: "rotate@example.com", Password: testutil.DefaultPassword})
	require.NoError(t, err)

	reissued, err := srv.Reissue(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, reissued.RefreshToken)
	assert.Positive(t, reissued.RefreshMaxAge)

	principal, err := srv.Authenticate(ctx, reissued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, "rotate@example.com", principal.Email)

	_, err = srv.Reissue(ctx, login.RefreshToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidRefreshToken))

	_, err = srv.Reissue(ctx, reissued.RefreshToken)
	require.NoError(t, err)
}

func TestAuthService_Reissue_RejectsNonRefreshTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	testutil.NewUserBuilder().WithEmail("kind@example.com").Build(t, env.db)
	srv := env.authService()

	login, err := srv.Login(ctx, usecase.LoginInput{Email: "kind@example.com", Password: testutil.DefaultPassword})
	require.NoError(t, err)

	for _, token := range []string{"", "not-a-token", login.AccessToken} {
		_, err := srv.Reissue(ctx, token)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidRefreshToken))
	}
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	testutil.NewUserBuilder().WithEmail("bye@example.com").Build(t, env.db)
	srv := env.authService()

	login, err := srv.Login(ctx, usecase.LoginInput{Email: "bye@example.com", Password: testutil.DefaultPassword})
	require.NoError(t, err)

	require.NoError(t, srv.Logout(ctx, login.RefreshToken))

	_, err = srv.Reissue(ctx, login.RefreshToken)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidRefreshToken))

	assert.NoError(t, srv.Logout(ctx, ""))
	assert.NoError(t, srv.Logout(ctx, "garbage"))
}

func TestAuthService_Authenticate_RejectsRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	testutil.NewUserBuilder().WithEmail("access@example.com").Build(t, env.db)
	srv := env.authService()

	login, err := srv.Login(ctx, usecase.LoginInput{Email: "access@example.com", Password: testutil.DefaultPassword})
	require.NoError(t, err)

	_, err = srv.Authenticate(ctx, login.RefreshToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAuthenticationFailed))
}

func TestRefreshTokenService_RedisConcurrentReissue(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	client, _ := testutil.NewTestRedis(t)
	ledger := NewRefreshTokenService(RefreshTokenServiceParams{
		Repo:         redis.NewRefreshTokenStore(client),
		TokenService: env.tokenService,
		Logger:       env.logger,
	})

	token, err := env.tokenService.IssueRefreshToken(42)
	require.NoError(t, err)
	require.NoError(t, ledger.Save(ctx, token, 42, "racer@example.com", time.Now().Add(time.Hour)))

	const racers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Reissue(context.Background(), token)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domainerrors.ErrInvalidRefreshToken):
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, racers-1, rejected)
}

func TestRefreshTokenService_RemainingSeconds(t *testing.T) {
	env := newTestEnv(t)
	ledger := env.refreshTokenService()

	assert.Zero(t, ledger.RemainingSeconds("garbage"))

	token, err := env.tokenService.IssueRefreshToken(7)
	require.NoError(t, err)
	assert.InDelta(t, (14 * 24 * time.Hour).Seconds(), float64(ledger.RemainingSeconds(token)), 5)

	cfg := newTestConfig()
	cfg.Auth.RefreshTokenTTL = time.Millisecond
	shortLived, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	expiring, err := shortLived.IssueRefreshToken(7)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	assert.Negative(t, ledger.RemainingSeconds(expiring))

	exists, err := ledger.Exists(context.Background(), expiring)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRefreshTokenService_SweepExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	user := testutil.NewUserBuilder().Build(t, env.db)
	ledger := env.refreshTokenService()

	require.NoError(t, env.refreshRepo.Save(ctx, &entity.RefreshToken{
		Token:     "stale-token",
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	removed, err := ledger.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
