package repository

import (
	"context"
	"errors"
	"time"

	"community/internal/domain/entity"
)

var (
	// ErrPostNotFound is returned when no live post matches the query.
	ErrPostNotFound = errors.New("post not found")
	// ErrPostCountNotFound is returned when a post has no aggregate row.
	ErrPostCountNotFound = errors.New("post count not found")
)

// PostRepository persists posts. Soft-deleted posts are invisible to every read.
type PostRepository interface {
	// Create persists a new post and fills its generated ID and timestamps.
	Create(ctx context.Context, post *entity.Post) error

	// FindByID retrieves a live post with its author joined.
	FindByID(ctx context.Context, id int64) (*entity.Post, error)

	// List returns one page of live posts ordered by id descending.
	// A nil cursor starts from the newest post, otherwise only ids below cursor are returned.
	List(ctx context.Context, cursor *int64, size int) (*entity.CursorPage[*entity.Post], error)

	// ListIDsByAuthor returns the ids of every live post written by authorID.
	ListIDsByAuthor(ctx context.Context, authorID int64) ([]int64, error)

	// Update writes title and content of an existing post.
	Update(ctx context.Context, post *entity.Post) error

	// SoftDelete marks the post as deleted. Deleting an already deleted post returns ErrPostNotFound.
	SoftDelete(ctx context.Context, id int64, at time.Time) error
}

// PostCountRepository persists the per-post aggregate.
// Mutations must use the transaction-bound instance of the triggering content change.
type PostCountRepository interface {
	// Create inserts the aggregate row of a freshly created post.
	Create(ctx context.Context, count *entity.PostCount) error

	// FindByPostID returns ErrPostCountNotFound when the row is missing.
	FindByPostID(ctx context.Context, postID int64) (*entity.PostCount, error)

	// FindByPostIDs returns the aggregates that exist, keyed by post id.
	FindByPostIDs(ctx context.Context, postIDs []int64) (map[int64]*entity.PostCount, error)

	// Increment atomically adds delta to field. It returns ErrPostCountNotFound when no row was updated.
	Increment(ctx context.Context, postID int64, field entity.CountField, delta int64) error
}

// ImageRepository persists post images.
type ImageRepository interface {
	// CreateBatch inserts images in order and fills their generated IDs.
	CreateBatch(ctx context.Context, images []*entity.Image) error

	// ListByPostID returns live images of the post ordered by display order.
	ListByPostID(ctx context.Context, postID int64) ([]*entity.Image, error)

	// SoftDeleteByPostID marks every live image of the post as deleted.
	SoftDeleteByPostID(ctx context.Context, postID int64, at time.Time) error
}
