// Package authroles maps identity provider groups to eventhub roles.
package authroles

import (
	"strings"

	domainauth "github.com/target/eventhub/internal/domain/auth"
)

// StaticRoleMapper maps groups by exact, case-insensitive membership.
// Admin wins over user. An empty UserGroup grants the user role to every
// identity that is not an admin.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

// Map returns the role granted by groups.
func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	if m.AdminGroup != "" && hasGroup(groups, m.AdminGroup) {
		return domainauth.RoleAdmin
	}
	if m.UserGroup == "" || hasGroup(groups, m.UserGroup) {
		return domainauth.RoleUser
	}
	return domainauth.RoleGuest
}

func hasGroup(groups []string, want string) bool {
	for _, g := range groups {
		if strings.EqualFold(strings.TrimSpace(g), want) {
			return true
		}
	}
	return false
}
