package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"community/internal/infra/persistence/model"
)

// DefaultPassword satisfies the password policy and is the password of every built user.
const DefaultPassword = "secret-pass1"

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email    string
	nickname string
	password string
}

// NewUserBuilder creates a new UserBuilder with unique email and nickname.
func NewUserBuilder() *UserBuilder {
	suffix := uuid.NewString()[:8]

	return &UserBuilder{
		email:    fmt.Sprintf("user_%s@example.com", suffix),
		nickname: "user_" + suffix,
		password: DefaultPassword,
	}
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithNickname(nickname string) *UserBuilder {
	b.nickname = nickname
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build inserts the user and returns its row.
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) *model.UserModel {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &model.UserModel{
		Email:        b.email,
		PasswordHash: string(hash),
		Nickname:     b.nickname,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// CreatePost inserts a live post with a zeroed aggregate row.
func CreatePost(t *testing.T, db *gorm.DB, authorID int64, title string) *model.PostModel {
	t.Helper()

	post := &model.PostModel{
		Title:    title,
		Content:  "content of " + title,
		AuthorID: authorID,
	}
	if err := db.Omit("Author").Create(post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}
	if err := db.Omit("Post").Create(&model.PostCountModel{PostID: post.ID}).Error; err != nil {
		t.Fatalf("failed to create post count: %v", err)
	}

	return post
}

// CreateComment inserts a live comment and bumps the post's comment count.
func CreateComment(t *testing.T, db *gorm.DB, postID, authorID int64, content string) *model.CommentModel {
	t.Helper()

	comment := &model.CommentModel{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := db.Omit("Post", "Author").Create(comment).Error; err != nil {
		t.Fatalf("failed to create comment: %v", err)
	}
	if err := db.Model(&model.PostCountModel{}).Where("post_id = ?", postID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
		t.Fatalf("failed to bump comment count: %v", err)
	}

	return comment
}

// SoftDeletePost marks the post as deleted without touching its children.
func SoftDeletePost(t *testing.T, db *gorm.DB, postID int64) {
	t.Helper()

	if err := db.Model(&model.PostModel{}).Where("id = ?", postID).Update("deleted_at", time.Now()).Error; err != nil {
		t.Fatalf("failed to delete post: %v", err)
	}
}

// Counts returns the aggregate row of a post.
func Counts(t *testing.T, db *gorm.DB, postID int64) model.PostCountModel {
	t.Helper()

	var count model.PostCountModel
	if err := db.Where("post_id = ?", postID).First(&count).Error; err != nil {
		t.Fatalf("failed to load post count: %v", err)
	}

	return count
}
