// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"
	"time"

	"community/internal/domain/entity"
)

var (
	// ErrUserNotFound is returned when no live user matches the query.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when a unique column (email, nickname) is already taken.
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserRepository defines the standard operations for user persistence.
// Every finder ignores withdrawn (soft-deleted) users.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id int64) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByEmailFromPrimary is FindByEmail forced onto the write connection,
	// used right after a credential check where replica lag is not acceptable.
	FindByEmailFromPrimary(ctx context.Context, email string) (*entity.User, error)

	// ExistsByEmail reports whether any user row owns the email.
	// Withdrawn users count, since the unique index still covers their rows.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByNickname reports whether a user other than excludeID owns the nickname.
	// Pass 0 as excludeID to check against every user.
	ExistsByNickname(ctx context.Context, nickname string, excludeID int64) (bool, error)

	// Create persists a new user and fills its generated ID and timestamps.
	Create(ctx context.Context, user *entity.User) error

	// Update writes nickname, password hash and profile image of an existing user.
	Update(ctx context.Context, user *entity.User) error

	// SoftDelete marks the user as withdrawn.
	SoftDelete(ctx context.Context, id int64, at time.Time) error
}
