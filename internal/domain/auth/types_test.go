package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_Roles(t *testing.T) {
	tests := []struct {
		role  Role
		guest bool
		admin bool
	}{
		{RoleGuest, true, false},
		{RoleUser, false, false},
		{RoleAdmin, false, true},
		{Role(""), false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			s := Session{Role: tt.role}
			assert.Equal(t, tt.guest, s.IsGuest())
			assert.Equal(t, tt.admin, s.IsAdmin())
		})
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, Session{}.Expired(now), "zero expiry never expires")
	assert.False(t, Session{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.False(t, Session{ExpiresAt: now}.Expired(now))
	assert.True(t, Session{ExpiresAt: now.Add(-time.Second)}.Expired(now))
}

func TestSession_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		s    Session
		want string
	}{
		{"full name", Session{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}, "Ada Lovelace"},
		{"first only", Session{FirstName: "Ada", Email: "ada@example.com"}, "Ada"},
		{"last only", Session{LastName: "Lovelace"}, "Lovelace"},
		{"email fallback", Session{Email: "ada@example.com"}, "ada@example.com"},
		{"empty", Session{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.DisplayName())
		})
	}
}
