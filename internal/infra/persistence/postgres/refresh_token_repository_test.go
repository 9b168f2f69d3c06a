package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"community/internal/domain/entity"
	"community/internal/domain/repository"
	"community/internal/infra/persistence/model"
	"community/internal/testutil"
)

func newRefreshToken(userID int64, token string, ttl time.Duration) *entity.RefreshToken {
	return &entity.RefreshToken{
		Token:     token,
		UserID:    userID,
		Email:     "a@example.com",
		ExpiresAt: time.Now().Add(ttl),
	}
}

func countRefreshTokens(t *testing.T, db *gorm.DB, userID int64) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&model.RefreshTokenModel{}).Where("user_id = ?", userID).Count(&count).Error)

	return count
}

func TestRefreshTokenRepository_SaveSupersedesPrevious(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := testutil.Context(t)
	repo := NewRefreshTokenRepository(db)
	user := testutil.NewUserBuilder().Build(t, db)

	require.NoError(t, repo.Save(ctx, newRefreshToken(user.ID, "first", time.Hour)))
	require.NoError(t, repo.Save(ctx, newRefreshToken(user.ID, "second", time.Hour)))

	tokens, err := repo.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "second", tokens[0].Token)
	assert.Equal(t, int64(1), countRefreshTokens(t, db, user.ID))
}

func TestRefreshTokenRepository_RotateIsExclusive(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := testutil.Context(t)
	repo := NewRefreshTokenRepository(db)
	user := testutil.NewUserBuilder().Build(t, db)
	require.NoError(t, repo.Save(ctx, newRefreshToken(user.ID, "old", time.Hour)))

	require.NoError(t, repo.Rotate(ctx, "old", newRefreshToken(user.ID, "winner", time.Hour)))

	err := repo.Rotate(ctx, "old", newRefreshToken(user.ID, "loser", time.Hour))
	assert.ErrorIs(t, err, repository.ErrRefreshTokenNotFound)

	tokens, err := repo.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "winner", tokens[0].Token)
}

func TestRefreshTokenRepository_ExpiredTokens(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := testutil.Context(t)
	repo := NewRefreshTokenRepository(db)
	user := testutil.NewUserBuilder().Build(t, db)
	require.NoError(t, repo.Save(ctx, newRefreshToken(user.ID, "stale", -time.Minute)))

	tokens, err := repo.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, tokens)

	err = repo.Rotate(ctx, "stale", newRefreshToken(user.ID, "next", time.Hour))
	assert.ErrorIs(t, err, repository.ErrRefreshTokenNotFound)

	removed, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Zero(t, countRefreshTokens(t, db, user.ID))
}

func TestRefreshTokenRepository_DeleteByUserID(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := testutil.Context(t)
	repo := NewRefreshTokenRepository(db)
	alice := testutil.NewUserBuilder().Build(t, db)
	bob := testutil.NewUserBuilder().Build(t, db)
	require.NoError(t, repo.Save(ctx, newRefreshToken(alice.ID, "alice", time.Hour)))
	require.NoError(t, repo.Save(ctx, newRefreshToken(bob.ID, "bob", time.Hour)))

	require.NoError(t, repo.DeleteByUserID(ctx, alice.ID))

	assert.Zero(t, countRefreshTokens(t, db, alice.ID))
	assert.Equal(t, int64(1), countRefreshTokens(t, db, bob.ID))
}
