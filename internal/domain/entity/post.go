package entity

import "time"

// Post is a board article. Soft-deleting a post also soft-deletes its comments and images.
type Post struct {
	ID        int64
	Title     string
	Content   string
	AuthorID  int64
	Author    *User // Populated by reads that join the author, nil otherwise.
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsOwnedBy reports whether userID authored the post.
func (p *Post) IsOwnedBy(userID int64) bool {
	return p.AuthorID == userID
}

// AuthorNickname returns the joined author's nickname or an empty string.
func (p *Post) AuthorNickname() string {
	if p.Author == nil {
		return ""
	}

	return p.Author.Nickname
}

// Image is an object-storage image attached to a post, ordered by DisplayOrder.
type Image struct {
	ID           int64
	PostID       int64
	URL          string
	DisplayOrder int
	CreatedAt    time.Time
	DeletedAt    *time.Time
}

// PostCount is the denormalized aggregate of a post.
// It is created with the post and mutated only inside the transaction of the triggering change.
type PostCount struct {
	PostID       int64
	ViewCount    int64
	LikeCount    int64
	CommentCount int64
}

// CountField names a counter column of PostCount.
type CountField string

const (
	CountFieldView    CountField = "view_count"
	CountFieldLike    CountField = "like_count"
	CountFieldComment CountField = "comment_count"
)

// IsValid reports whether f names one of the PostCount columns.
func (f CountField) IsValid() bool {
	switch f {
	case CountFieldView, CountFieldLike, CountFieldComment:
		return true
	default:
		return false
	}
}
