package entity

import "time"

// Comment belongs to a post. Only its author may modify or delete it.
type Comment struct {
	ID        int64
	PostID    int64
	AuthorID  int64
	Author    *User
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsOwnedBy reports whether userID authored the comment.
func (c *Comment) IsOwnedBy(userID int64) bool {
	return c.AuthorID == userID
}

// AuthorNickname returns the joined author's nickname or an empty string.
func (c *Comment) AuthorNickname() string {
	if c.Author == nil {
		return ""
	}

	return c.Author.Nickname
}

// Like is keyed by (UserID, PostID). Unlike soft-deletes it and like restores the same row.
type Like struct {
	UserID    int64
	PostID    int64
	CreatedAt time.Time
	DeletedAt *time.Time
}

// IsActive reports whether the like currently counts.
func (l *Like) IsActive() bool {
	return l.DeletedAt == nil
}
