package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"community/internal/domain/entity"
	domainerrors "community/internal/domain/errors"
	"community/internal/domain/repository"
	"community/internal/errors"
	"community/internal/infra/persistence/model"
)

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository is the constructor for likeRepository.
func NewLikeRepository(db *gorm.DB) repository.LikeRepository {
	return &likeRepository{db: db}
}

func (repo *likeRepository) Find(ctx context.Context, userID, postID int64) (*entity.Like, error) {
	var likeM model.LikeModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&likeM).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, repository.ErrLikeNotFound
		}

		return nil, errors.Wrap(err, "failed to find like")
	}

	return toLikeDomain(&likeM), nil
}

func (repo *likeRepository) Create(ctx context.Context, like *entity.Like) error {
	likeM := &model.LikeModel{
		UserID: like.UserID,
		PostID: like.PostID,
	}
	if err := repo.db.WithContext(ctx).Omit("User", "Post").Create(likeM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrLikeAlreadyExists
		}
		if isForeignKeyConstraintViolation(err) {
			return errors.Wrap(repository.ErrPostNotFound, "liked post does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create like")
	}

	like.CreatedAt = likeM.CreatedAt
	like.DeletedAt = nil

	return nil
}

func (repo *likeRepository) Restore(ctx context.Context, userID, postID int64) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.LikeModel{}).
		Where("user_id = ? AND post_id = ? AND deleted_at IS NOT NULL", userID, postID).
		Update("deleted_at", nil)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to restore like")
	}

	return result.RowsAffected > 0, nil
}

func (repo *likeRepository) SoftDelete(ctx context.Context, userID, postID int64, at time.Time) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.LikeModel{}).
		Where("user_id = ? AND post_id = ? AND deleted_at IS NULL", userID, postID).
		Update("deleted_at", at)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete like")
	}

	return result.RowsAffected > 0, nil
}

func (repo *likeRepository) ExistsActive(ctx context.Context, userID, postID int64) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.LikeModel{}).
		Where("user_id = ? AND post_id = ? AND deleted_at IS NULL", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check like")
	}

	return count > 0, nil
}

func (repo *likeRepository) ListActiveByUser(ctx context.Context, userID int64) ([]*entity.Like, error) {
	var likesM []*model.LikeModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Order("post_id").
		Find(&likesM).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list likes by user")
	}

	likes := make([]*entity.Like, 0, len(likesM))
	for _, likeM := range likesM {
		likes = append(likes, toLikeDomain(likeM))
	}

	return likes, nil
}

func toLikeDomain(data *model.LikeModel) *entity.Like {
	return &entity.Like{
		UserID:    data.UserID,
		PostID:    data.PostID,
		CreatedAt: data.CreatedAt,
		DeletedAt: data.DeletedAt,
	}
}
