package domain

import "time"

// PasswordResetToken is a short-lived numeric reset code keyed by the
// requesting email. The code itself is stored hashed. At most one unused,
// unexpired token per email is considered valid: issuing a new code marks all
// prior unused tokens used.
type PasswordResetToken struct {
	ID        string
	Email     string
	CodeHash  string
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
}

// Expired reports whether the token is past its expiry at the given instant.
func (t PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
