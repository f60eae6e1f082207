// Package models defines the persisted row types owned by the credential
// store: users, refresh tokens, roles, user-role links and file metadata.
package models

import "time"

// User is the identity record. The password hash and the single-use token
// fields are never serialized outward.
//
// At most one outstanding token of each kind exists per user: a token value
// is authoritative only while it matches the stored field and the paired
// expiry has not elapsed.
type User struct {
	ID                           int64      `json:"id"`
	Username                     string     `json:"username"`
	Email                        string     `json:"email"`
	PasswordHash                 string     `json:"-"`
	IsEmailConfirmed             bool       `json:"is_email_confirmed"`
	IsActive                     bool       `json:"is_active"`
	EmailConfirmationToken       *string    `json:"-"`
	EmailConfirmationTokenExpiry *time.Time `json:"-"`
	EmailChangeToken             *string    `json:"-"`
	EmailChangeTokenExpiry       *time.Time `json:"-"`
	PasswordResetToken           *string    `json:"-"`
	PasswordResetTokenExpiry     *time.Time `json:"-"`
	PendingEmail                 *string    `json:"-"`
	CreatedAt                    time.Time  `json:"created_at"`
	UpdatedAt                    *time.Time `json:"updated_at,omitempty"`
}

// EmailHistory records a confirmed email change.
type EmailHistory struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	OldEmail   string     `json:"old_email"`
	NewEmail   string     `json:"new_email"`
	ChangedAt  time.Time  `json:"changed_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}
