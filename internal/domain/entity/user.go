// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// User is an account of the board. Email and Nickname are unique among all users.
// Users are soft-deleted so that authored posts, comments and likes keep their references.
type User struct {
	ID           int64      // Auto-increment identifier, also the JWT subject.
	Email        string     // Login identifier.
	PasswordHash string     // bcrypt hash, never serialized to clients.
	Nickname     string     // Display name shown next to posts and comments.
	ProfileImage *string    // Persisted URL of the profile image, nil when unset.
	CreatedAt    time.Time  // Timestamp of signup.
	UpdatedAt    time.Time  // Timestamp of the last modification.
	DeletedAt    *time.Time // Set on withdrawal.
}

// IsDeleted reports whether the account has been withdrawn.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// Principal is the authenticated identity attached to a request.
// Email is empty in session mode, Nickname is empty in token mode.
type Principal struct {
	UserID   int64
	Email    string
	Nickname string
}
