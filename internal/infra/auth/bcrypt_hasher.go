package auth

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"community/config"
	domainerrors "community/internal/domain/errors"
	"community/internal/domain/service"
	"community/internal/errors"
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
	specialChars     = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?"
)

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg != nil && cfg.Auth != nil && cfg.Auth.BcryptCost > 0 {
		cost = cfg.Auth.BcryptCost
	}

	return NewBcryptHasherWithCost(cost)
}

// NewBcryptHasherWithCost builds a hasher with an explicit cost, clamped to bcrypt's bounds.
func NewBcryptHasherWithCost(cost int) service.PasswordHasher {
	cost = min(max(cost, bcrypt.MinCost), bcrypt.MaxCost)

	return &bcryptHasher{cost: cost}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	// err is nil if the password and hash match.
	return err == nil
}

// ValidatePasswordStrength requires at least 8 characters with a lowercase letter,
// a digit and a special character.
func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	switch {
	case utf8.RuneCountInString(password) < minPasswordLength:
		return errors.Wrap(domainerrors.ErrInvalidPassword, "password must be at least 8 characters long")
	case len(password) > maxPasswordBytes:
		return errors.Wrap(domainerrors.ErrInvalidPassword, "password must be at most 72 bytes long")
	case !h.hasLowercase(password):
		return errors.Wrap(domainerrors.ErrInvalidPassword, "password must contain at least one lowercase letter")
	case !h.hasNumbers(password):
		return errors.Wrap(domainerrors.ErrInvalidPassword, "password must contain at least one number")
	case !h.hasSpecialChars(password):
		return errors.Wrap(domainerrors.ErrInvalidPassword, "password must contain at least one special character")
	}

	return nil
}

func (h *bcryptHasher) hasLowercase(s string) bool {
	return strings.IndexFunc(s, unicode.IsLower) >= 0
}

func (h *bcryptHasher) hasNumbers(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func (h *bcryptHasher) hasSpecialChars(s string) bool {
	return strings.ContainsAny(s, specialChars)
}
