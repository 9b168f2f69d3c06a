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

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository is the constructor for commentRepository.
func NewCommentRepository(db *gorm.DB) repository.CommentRepository {
	return &commentRepository{db: db}
}

func (repo *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	commentM := &model.CommentModel{
		PostID:   comment.PostID,
		AuthorID: comment.AuthorID,
		Content:  comment.Content,
	}
	if err := repo.db.WithContext(ctx).Omit("Post", "Author").Create(commentM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return errors.Wrap(repository.ErrPostNotFound, "comment target does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create comment")
	}

	comment.ID = commentM.ID
	comment.CreatedAt = commentM.CreatedAt
	comment.UpdatedAt = commentM.UpdatedAt

	return nil
}

func (repo *commentRepository) FindByID(ctx context.Context, id int64) (*entity.Comment, error) {
	var commentM model.CommentModel
	err := repo.db.WithContext(ctx).
		Preload("Author").
		Joins("JOIN posts ON posts.id = comments.post_id AND posts.deleted_at IS NULL").
		Where("comments.id = ? AND comments.deleted_at IS NULL", id).
		First(&commentM).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, repository.ErrCommentNotFound
		}

		return nil, errors.Wrap(err, "failed to find comment")
	}

	return toCommentDomain(&commentM), nil
}

func (repo *commentRepository) ListByPost(ctx context.Context, postID int64, cursor *int64, size int) (*entity.CursorPage[*entity.Comment], error) {
	query := repo.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ? AND deleted_at IS NULL", postID)
	if cursor != nil {
		query = query.Where("id < ?", *cursor)
	}

	var commentsM []*model.CommentModel
	if err := query.Order("id DESC").Limit(size + 1).Find(&commentsM).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list comments")
	}

	comments := make([]*entity.Comment, 0, len(commentsM))
	for _, commentM := range commentsM {
		comments = append(comments, toCommentDomain(commentM))
	}

	return entity.NewCursorPage(comments, size, func(c *entity.Comment) int64 { return c.ID }), nil
}

func (repo *commentRepository) ListByAuthor(ctx context.Context, authorID int64) ([]*entity.Comment, error) {
	var commentsM []*model.CommentModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND deleted_at IS NULL", authorID).
		Order("id").
		Find(&commentsM).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list comments by author")
	}

	comments := make([]*entity.Comment, 0, len(commentsM))
	for _, commentM := range commentsM {
		comments = append(comments, toCommentDomain(commentM))
	}

	return comments, nil
}

func (repo *commentRepository) Update(ctx context.Context, comment *entity.Comment) error {
	now := time.Now()
	result := repo.db.WithContext(ctx).
		Model(&model.CommentModel{}).
		Where("id = ? AND deleted_at IS NULL", comment.ID).
		Updates(map[string]any{
			"content":    comment.Content,
			"updated_at": now,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update comment")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCommentNotFound
	}

	comment.UpdatedAt = now

	return nil
}

func (repo *commentRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CommentModel{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete comment")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCommentNotFound
	}

	return nil
}

func (repo *commentRepository) SoftDeleteByPostID(ctx context.Context, postID int64, at time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.CommentModel{}).
		Where("post_id = ? AND deleted_at IS NULL", postID).
		Update("deleted_at", at)
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete comments of post")
	}

	return result.RowsAffected, nil
}

func toCommentDomain(data *model.CommentModel) *entity.Comment {
	return &entity.Comment{
		ID:        data.ID,
		PostID:    data.PostID,
		AuthorID:  data.AuthorID,
		Author:    toUserDomain(data.Author),
		Content:   data.Content,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
		DeletedAt: data.DeletedAt,
	}
}
