package domain

import "time"

// OTPChallenge is a pending one-time-password login for a dealer.
// Only the bcrypt hash of the code is ever stored.
type OTPChallenge struct {
	DealerID  string
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the challenge can no longer be redeemed.
func (c OTPChallenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Session binds an opaque bearer token to a dealer until it expires.
type Session struct {
	Token     string
	DealerID  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is past its TTL.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
