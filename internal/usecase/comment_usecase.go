package usecase

import (
	"context"
	"time"

	"community/internal/domain/entity"
)

// CommentView is a comment as seen by a viewer.
type CommentView struct {
	ID             int64     `json:"commentId"`
	PostID         int64     `json:"postId"`
	AuthorID       int64     `json:"authorId"`
	AuthorNickname string    `json:"authorNickname"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	IsMine         bool      `json:"isMine"`
}

// CommentUsecase defines comment operations. Writes keep the post's comment count in step.
type CommentUsecase interface {
	List(ctx context.Context, postID int64, cursor *int64, size int, viewerID int64) (*entity.CursorPage[*CommentView], error)
	Write(ctx context.Context, userID, postID int64, content string) (int64, error)
	Modify(ctx context.Context, userID, commentID int64, content string) error
	Remove(ctx context.Context, userID, commentID int64) error
}

// LikeUsecase toggles likes. Like is idempotent.
type LikeUsecase interface {
	Like(ctx context.Context, userID, postID int64) error
	Unlike(ctx context.Context, userID, postID int64) error
	IsLiked(ctx context.Context, userID, postID int64) (bool, error)
}
