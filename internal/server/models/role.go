package models

import "time"

// Role names. The "user" role is seeded by the migrations and assigned to
// every new registration.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Role is a catalog entry.
type Role struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// UserRole links a user to a role. One row per (user, role) pair.
type UserRole struct {
	ID        int64
	UserID    int64
	RoleID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
