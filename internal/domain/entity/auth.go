package entity

import "time"

// RefreshToken is the server-side record of a long-lived credential.
// A principal holds at most one live record; rotation replaces it.
type RefreshToken struct {
	Token     string    // The signed refresh token as handed to the client.
	UserID    int64     // Principal the token was issued to.
	Email     string    // Email of the principal at issuance time.
	ExpiresAt time.Time // Matches the token's exp claim.
	CreatedAt time.Time
}

// IsExpired reports whether the record is past its expiry at the given instant.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// Session is a cookie-backed server-side login.
type Session struct {
	ID       string        `json:"-"` // Random opaque identifier stored in the SID cookie.
	UserID   int64         `json:"userId"`
	Nickname string        `json:"nickname"`
	TTL      time.Duration `json:"-"`
}
