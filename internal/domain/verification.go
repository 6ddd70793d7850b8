package domain

import "time"

// VerificationCode binds a one-time code to a user. Rows are never marked used; the
// user's Verified flag is the source of truth once a code is consumed.
type VerificationCode struct {
	Code      string
	UserID    int64
	CreatedAt time.Time
}

// Expired reports whether the code is past window at now. A zero CreatedAt counts as
// expired.
func (v VerificationCode) Expired(now time.Time, window time.Duration) bool {
	if v.CreatedAt.IsZero() {
		return true
	}
	return now.Sub(v.CreatedAt) > window
}
