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

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository is the constructor for imageRepository.
func NewImageRepository(db *gorm.DB) repository.ImageRepository {
	return &imageRepository{db: db}
}

func (repo *imageRepository) CreateBatch(ctx context.Context, images []*entity.Image) error {
	if len(images) == 0 {
		return nil
	}

	imagesM := make([]*model.ImageModel, 0, len(images))
	for _, image := range images {
		imagesM = append(imagesM, &model.ImageModel{
			PostID:       image.PostID,
			URL:          image.URL,
			DisplayOrder: image.DisplayOrder,
		})
	}
	if err := repo.db.WithContext(ctx).Omit("Post").Create(&imagesM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create images")
	}

	for i, imageM := range imagesM {
		images[i].ID = imageM.ID
		images[i].CreatedAt = imageM.CreatedAt
	}

	return nil
}

func (repo *imageRepository) ListByPostID(ctx context.Context, postID int64) ([]*entity.Image, error) {
	var imagesM []*model.ImageModel
	err := repo.db.WithContext(ctx).
		Where("post_id = ? AND deleted_at IS NULL", postID).
		Order("display_order, id").
		Find(&imagesM).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list images")
	}

	images := make([]*entity.Image, 0, len(imagesM))
	for _, imageM := range imagesM {
		images = append(images, &entity.Image{
			ID:           imageM.ID,
			PostID:       imageM.PostID,
			URL:          imageM.URL,
			DisplayOrder: imageM.DisplayOrder,
			CreatedAt:    imageM.CreatedAt,
			DeletedAt:    imageM.DeletedAt,
		})
	}

	return images, nil
}

func (repo *imageRepository) SoftDeleteByPostID(ctx context.Context, postID int64, at time.Time) error {
	err := repo.db.WithContext(ctx).
		Model(&model.ImageModel{}).
		Where("post_id = ? AND deleted_at IS NULL", postID).
		Update("deleted_at", at).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete images")
	}

	return nil
}
