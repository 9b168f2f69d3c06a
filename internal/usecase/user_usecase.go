package usecase

import (
	"context"

	"community/internal/domain/entity"
)

// --- Input DTOs ---

// SignUpInput defines the data required to register a new user.
type SignUpInput struct {
	Email           string
	Password        string
	Nickname        string
	ProfileImageKey *string
}

// ChangePasswordInput carries the current password for re-verification.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// --- Output DTOs ---

// UserInfo is the profile of the authenticated user.
type UserInfo struct {
	ID              int64   `json:"userId"`
	Email           string  `json:"email"`
	Nickname        string  `json:"nickname"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty"` // Presigned download URL, nil when no image is set.
}

// UserUsecase defines account operations.
type UserUsecase interface {
	SignUp(ctx context.Context, input SignUpInput) (*entity.User, error)
	CheckEmailAvailable(ctx context.Context, email string) (bool, error)
	CheckPasswordValid(password string) bool
	GetMe(ctx context.Context, userID int64) (*UserInfo, error)
	ChangeNickname(ctx context.Context, userID int64, nickname string) error
	ChangePassword(ctx context.Context, userID int64, input ChangePasswordInput) error
	UpdateProfileImage(ctx context.Context, userID int64, imageKey string) error
	DeleteProfileImage(ctx context.Context, userID int64) error
	// Withdraw soft-deletes the user and everything they authored, then revokes their refresh tokens.
	Withdraw(ctx context.Context, userID int64) error
}
