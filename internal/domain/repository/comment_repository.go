package repository

import (
	"context"
	"errors"
	"time"

	"community/internal/domain/entity"
)

var (
	// ErrCommentNotFound is returned when no live comment matches the query.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrLikeNotFound is returned when no like row exists for the (user, post) pair.
	ErrLikeNotFound = errors.New("like not found")
	// ErrLikeAlreadyExists is returned when a concurrent request inserted the same like first.
	ErrLikeAlreadyExists = errors.New("like already exists")
)

// CommentRepository persists comments. Soft-deleted comments are invisible to every read.
type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error

	// FindByID retrieves a live comment whose post is also live.
	FindByID(ctx context.Context, id int64) (*entity.Comment, error)

	// ListByPost returns one page of live comments of a post ordered by id descending.
	ListByPost(ctx context.Context, postID int64, cursor *int64, size int) (*entity.CursorPage[*entity.Comment], error)

	// ListByAuthor returns every live comment written by authorID.
	ListByAuthor(ctx context.Context, authorID int64) ([]*entity.Comment, error)

	// Update writes the content of an existing comment.
	Update(ctx context.Context, comment *entity.Comment) error

	// SoftDelete marks a single comment as deleted.
	SoftDelete(ctx context.Context, id int64, at time.Time) error

	// SoftDeleteByPostID marks every live comment of the post as deleted and returns how many were affected.
	SoftDeleteByPostID(ctx context.Context, postID int64, at time.Time) (int64, error)
}

// LikeRepository persists likes keyed by (user, post).
type LikeRepository interface {
	// Find returns the like row whether active or soft-deleted.
	Find(ctx context.Context, userID, postID int64) (*entity.Like, error)

	// Create inserts a new active like.
	Create(ctx context.Context, like *entity.Like) error

	// Restore clears deleted_at of a soft-deleted row and reports whether it changed anything.
	Restore(ctx context.Context, userID, postID int64) (bool, error)

	// SoftDelete sets deleted_at of an active row and reports whether it changed anything.
	SoftDelete(ctx context.Context, userID, postID int64, at time.Time) (bool, error)

	// ExistsActive reports whether an active like exists.
	ExistsActive(ctx context.Context, userID, postID int64) (bool, error)

	// ListActiveByUser returns every active like of the user.
	ListActiveByUser(ctx context.Context, userID int64) ([]*entity.Like, error)
}
