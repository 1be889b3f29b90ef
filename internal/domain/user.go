package domain

import (
	"time"
)

// User is a registered account. Guests can run interviews without one;
// a user record only links sessions to an email for later retrieval.
type User struct {
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name,omitempty"`
	Sessions     []string   `json:"sessions"`
	IsActive     bool       `json:"is_active"`
	IsVerified   bool       `json:"is_verified"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// Profile is the safe public view of a user (no credential material).
type Profile struct {
	Email        string     `json:"email"`
	Name         string     `json:"name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	SessionCount int        `json:"session_count"`
	IsVerified   bool       `json:"is_verified"`
}

// Profile builds the public view of the user.
func (u *User) Profile() Profile {
	return Profile{
		Email:        u.Email,
		Name:         u.Name,
		CreatedAt:    u.CreatedAt,
		LastLogin:    u.LastLogin,
		SessionCount: len(u.Sessions),
		IsVerified:   u.IsVerified,
	}
}
