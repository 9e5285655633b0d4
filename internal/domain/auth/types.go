// Package auth holds the identity and session types shared by the auth
// service, its adapters and the HTTP layer.
package auth

import (
	"strings"
	"time"
)

// Role is the authorization level granted to a session.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// Identity is what a provider reports about a signed-in user.
type Identity struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	Groups    []string
	// ExpiresAt is the provider token expiry; zero means unknown.
	ExpiresAt time.Time
}

// Session is stored server side and referenced by an opaque cookie ID.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) IsGuest() bool { return s.Role == RoleGuest }

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// DisplayName joins first and last name, falling back to email.
func (s Session) DisplayName() string {
	name := strings.TrimSpace(s.FirstName + " " + s.LastName)
	if name == "" {
		return s.Email
	}
	return name
}
