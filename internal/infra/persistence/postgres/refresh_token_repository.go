package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"community/internal/domain/entity"
	domainerrors "community/internal/domain/errors"
	"community/internal/domain/repository"
	"community/internal/errors"
	"community/internal/infra/persistence/model"
)

// refreshTokenRepository is the relational backing of the refresh ledger.
// Ledger reads go to the primary so a just-rotated token is never seen as live.
type refreshTokenRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRefreshTokenRepository is the constructor for refreshTokenRepository.
func NewRefreshTokenRepository(db *gorm.DB) repository.RefreshTokenRepository {
	return &refreshTokenRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Save removes every other token of the principal before inserting.
func (repo *refreshTokenRepository) Save(ctx context.Context, token *entity.RefreshToken) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).Delete(&model.RefreshTokenModel{}).Error; err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to delete superseded refresh tokens")
		}

		return repo.insert(tx, token)
	})
}

func (repo *refreshTokenRepository) FindByUserID(ctx context.Context, userID int64) ([]*entity.RefreshToken, error) {
	var tokensM []*model.RefreshTokenModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("user_id = ? AND expires_at > ?", userID, repo.now()).
		Order("created_at DESC").
		Find(&tokensM).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find refresh tokens")
	}

	tokens := make([]*entity.RefreshToken, 0, len(tokensM))
	for _, tokenM := range tokensM {
		tokens = append(tokens, toRefreshTokenDomain(tokenM))
	}

	return tokens, nil
}

// Rotate relies on the conditional DELETE: of two racing rotations only one can remove the row.
func (repo *refreshTokenRepository) Rotate(ctx context.Context, oldToken string, next *entity.RefreshToken) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Where("token = ? AND user_id = ? AND expires_at > ?", oldToken, next.UserID, repo.now()).
			Delete(&model.RefreshTokenModel{})
		if result.Error != nil {
			return domainerrors.NewDatabaseExecuteError(result.Error, "failed to consume refresh token")
		}
		if result.RowsAffected != 1 {
			return repository.ErrRefreshTokenNotFound
		}

		return repo.insert(tx, next)
	})
}

func (repo *refreshTokenRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	err := repo.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.RefreshTokenModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete refresh tokens")
	}

	return nil
}

func (repo *refreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := repo.db.WithContext(ctx).Where("expires_at <= ?", repo.now()).Delete(&model.RefreshTokenModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete expired refresh tokens")
	}

	return result.RowsAffected, nil
}

func (repo *refreshTokenRepository) insert(tx *gorm.DB, token *entity.RefreshToken) error {
	tokenM := &model.RefreshTokenModel{
		Token:     token.Token,
		UserID:    token.UserID,
		Email:     token.Email,
		ExpiresAt: token.ExpiresAt.UTC(),
	}
	if err := tx.Omit("User").Create(tokenM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return errors.Wrap(repository.ErrUserNotFound, "refresh token owner does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create refresh token")
	}

	token.CreatedAt = tokenM.CreatedAt

	return nil
}

func toRefreshTokenDomain(data *model.RefreshTokenModel) *entity.RefreshToken {
	return &entity.RefreshToken{
		Token:     data.Token,
		UserID:    data.UserID,
		Email:     data.Email,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}
