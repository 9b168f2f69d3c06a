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

// postRepository implements the domain.PostRepository interface using GORM.
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository is the constructor for postRepository.
func NewPostRepository(db *gorm.DB) repository.PostRepository {
	return &postRepository{db: db}
}

func (repo *postRepository) Create(ctx context.Context, post *entity.Post) error {
	postM := fromPostDomain(post)

	if err := repo.db.WithContext(ctx).Omit("Author").Create(postM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return errors.Wrap(repository.ErrUserNotFound, "post author does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create post")
	}

	post.ID = postM.ID
	post.CreatedAt = postM.CreatedAt
	post.UpdatedAt = postM.UpdatedAt

	return nil
}

func (repo *postRepository) FindByID(ctx context.Context, id int64) (*entity.Post, error) {
	var postM model.PostModel
	err := repo.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&postM).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, repository.ErrPostNotFound
		}

		return nil, errors.Wrap(err, "failed to find post")
	}

	return toPostDomain(&postM), nil
}

// List is a keyset scan over descending ids, so inserts never shift a page already read.
func (repo *postRepository) List(ctx context.Context, cursor *int64, size int) (*entity.CursorPage[*entity.Post], error) {
	query := repo.db.WithContext(ctx).
		Preload("Author").
		Where("deleted_at IS NULL")
	if cursor != nil {
		query = query.Where("id < ?", *cursor)
	}

	var postsM []*model.PostModel
	if err := query.Order("id DESC").Limit(size + 1).Find(&postsM).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list posts")
	}

	posts := make([]*entity.Post, 0, len(postsM))
	for _, postM := range postsM {
		posts = append(posts, toPostDomain(postM))
	}

	return entity.NewCursorPage(posts, size, func(p *entity.Post) int64 { return p.ID }), nil
}

func (repo *postRepository) ListIDsByAuthor(ctx context.Context, authorID int64) ([]int64, error) {
	var ids []int64
	err := repo.db.WithContext(ctx).
		Model(&model.PostModel{}).
		Where("user_id = ? AND deleted_at IS NULL", authorID).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list post ids by author")
	}

	return ids, nil
}

func (repo *postRepository) Update(ctx context.Context, post *entity.Post) error {
	now := time.Now()
	result := repo.db.WithContext(ctx).
		Model(&model.PostModel{}).
		Where("id = ? AND deleted_at IS NULL", post.ID).
		Updates(map[string]any{
			"title":      post.Title,
			"content":    post.Content,
			"updated_at": now,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update post")
	}
	if result.RowsAffected == 0 {
		return repository.ErrPostNotFound
	}

	post.UpdatedAt = now

	return nil
}

func (repo *postRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.PostModel{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete post")
	}
	if result.RowsAffected == 0 {
		return repository.ErrPostNotFound
	}

	return nil
}

func toPostDomain(data *model.PostModel) *entity.Post {
	return &entity.Post{
		ID:        data.ID,
		Title:     data.Title,
		Content:   data.Content,
		AuthorID:  data.AuthorID,
		Author:    toUserDomain(data.Author),
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
		DeletedAt: data.DeletedAt,
	}
}

func fromPostDomain(data *entity.Post) *model.PostModel {
	return &model.PostModel{
		ID:        data.ID,
		Title:     data.Title,
		Content:   data.Content,
		AuthorID:  data.AuthorID,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
		DeletedAt: data.DeletedAt,
	}
}
