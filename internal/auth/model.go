// Package auth provides signup/login with salted password hashes and opaque
// session tokens held in an injected key-value store, so multiple API
// instances can share sessions.
package auth

import (
	"strings"
	"time"
)

// Roles assigned at signup. Admin comes only from the whitelist.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account. PasswordHash is "salt:sha256(password+salt)".
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoggedIn *time.Time `json:"last_logged_in,omitempty"`
}

// Session is the token-resolved identity stored in the token store.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// SignupRequest is the payload for POST /auth/signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate checks required fields and the minimum password length.
func (r *SignupRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" || strings.TrimSpace(r.Name) == "" {
		return ErrMissingFields
	}
	if len(r.Password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NormalizeEmail lowercases and trims an email for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
