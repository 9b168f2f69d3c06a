package usecase

import (
	"context"
	"time"

	"community/internal/domain/entity"
)

// Page size bounds shared by post and comment listings.
const (
	DefaultPostPageSize    = 20
	DefaultCommentPageSize = 5
	MaxPageSize            = 100
)

// NormalizePageSize maps a non-positive size to fallback and caps it at MaxPageSize.
func NormalizePageSize(size, fallback int) int {
	if size <= 0 {
		return fallback
	}

	return min(size, MaxPageSize)
}

// MaxPostImages is the upper bound of images attached to one post.
const MaxPostImages = 10

// --- Input DTOs ---

// CreatePostInput defines a new post. ImageKeys must already be uploaded.
type CreatePostInput struct {
	Title     string
	Content   string
	ImageKeys []string
}

// ModifyPostInput updates only the non-nil fields.
type ModifyPostInput struct {
	Title   *string
	Content *string
}

// --- Output DTOs ---

// Counts is the display form of a post aggregate.
type Counts struct {
	ViewCount    int64 `json:"viewCount"`
	LikeCount    int64 `json:"likeCount"`
	CommentCount int64 `json:"commentCount"`
}

// PostSummary is one row of the post listing.
type PostSummary struct {
	ID             int64     `json:"postId"`
	Title          string    `json:"title"`
	AuthorNickname string    `json:"authorNickname"`
	CreatedAt      time.Time `json:"createdAt"`
	Counts
}

// PostDetail is a single post as seen by a viewer.
type PostDetail struct {
	ID             int64     `json:"postId"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	AuthorID       int64     `json:"authorId"`
	AuthorNickname string    `json:"authorNickname"`
	ImageURLs      []string  `json:"imageUrls"` // Presigned download URLs in display order.
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	IsMine         bool      `json:"isMine"`
	IsLiked        bool      `json:"isLiked"`
	Counts
}

// PostUsecase defines board post operations.
// A viewerID of 0 denotes an anonymous reader.
type PostUsecase interface {
	Create(ctx context.Context, userID int64, input CreatePostInput) (int64, error)
	List(ctx context.Context, cursor *int64, size int) (*entity.CursorPage[*PostSummary], error)
	// Get counts a view and returns the post.
	Get(ctx context.Context, postID, viewerID int64) (*PostDetail, error)
	Modify(ctx context.Context, userID, postID int64, input ModifyPostInput) error
	Delete(ctx context.Context, userID, postID int64) error
}
