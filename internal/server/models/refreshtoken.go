package models

import "time"

// RefreshToken is a long-lived opaque credential. It is valid iff a row
// exists for (token, user id) and ExpiresAt is still in the future. Multiple
// rows per user are allowed (multi-device sessions).
type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
