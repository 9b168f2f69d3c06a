package postgres

import (
	"context"

	"gorm.io/gorm"

	"community/internal/domain/entity"
	domainerrors "community/internal/domain/errors"
	"community/internal/domain/repository"
	"community/internal/errors"
	"community/internal/infra/persistence/model"
)

type postCountRepository struct {
	db *gorm.DB
}

// NewPostCountRepository is the constructor for postCountRepository.
func NewPostCountRepository(db *gorm.DB) repository.PostCountRepository {
	return &postCountRepository{db: db}
}

func (repo *postCountRepository) Create(ctx context.Context, count *entity.PostCount) error {
	countM := &model.PostCountModel{
		PostID:       count.PostID,
		ViewCount:    count.ViewCount,
		LikeCount:    count.LikeCount,
		CommentCount: count.CommentCount,
	}
	if err := repo.db.WithContext(ctx).Omit("Post").Create(countM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create post count")
	}

	return nil
}

func (repo *postCountRepository) FindByPostID(ctx context.Context, postID int64) (*entity.PostCount, error) {
	var countM model.PostCountModel
	if err := repo.db.WithContext(ctx).Where("post_id = ?", postID).First(&countM).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, repository.ErrPostCountNotFound
		}

		return nil, errors.Wrap(err, "failed to find post count")
	}

	return toPostCountDomain(&countM), nil
}

func (repo *postCountRepository) FindByPostIDs(ctx context.Context, postIDs []int64) (map[int64]*entity.PostCount, error) {
	counts := make(map[int64]*entity.PostCount, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var countsM []*model.PostCountModel
	if err := repo.db.WithContext(ctx).Where("post_id IN ?", postIDs).Find(&countsM).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find post counts")
	}
	for _, countM := range countsM {
		counts[countM.PostID] = toPostCountDomain(countM)
	}

	return counts, nil
}

// Increment runs a single UPDATE so concurrent deltas never overwrite each other.
func (repo *postCountRepository) Increment(ctx context.Context, postID int64, field entity.CountField, delta int64) error {
	if !field.IsValid() {
		return errors.Errorf("unknown count field %q", field)
	}

	column := string(field)
	result := repo.db.WithContext(ctx).
		Model(&model.PostCountModel{}).
		Where("post_id = ?", postID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update post count")
	}
	if result.RowsAffected == 0 {
		return repository.ErrPostCountNotFound
	}

	return nil
}

func toPostCountDomain(data *model.PostCountModel) *entity.PostCount {
	return &entity.PostCount{
		PostID:       data.PostID,
		ViewCount:    data.ViewCount,
		LikeCount:    data.LikeCount,
		CommentCount: data.CommentCount,
	}
}
