package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/target/eventhub/internal/domain/auth"
)

func TestStaticRoleMapper_Map(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mapper StaticRoleMapper
		groups []string
		want   domainauth.Role
	}{
		{
			name:   "admin wins over user",
			mapper: StaticRoleMapper{AdminGroup: "admins", UserGroup: "organizers"},
			groups: []string{"organizers", "admins"},
			want:   domainauth.RoleAdmin,
		},
		{
			name:   "case insensitive",
			mapper: StaticRoleMapper{AdminGroup: "admins"},
			groups: []string{" Admins "},
			want:   domainauth.RoleAdmin,
		},
		{
			name:   "user group member",
			mapper: StaticRoleMapper{AdminGroup: "admins", UserGroup: "organizers"},
			groups: []string{"organizers"},
			want:   domainauth.RoleUser,
		},
		{
			name:   "not in user group",
			mapper: StaticRoleMapper{AdminGroup: "admins", UserGroup: "organizers"},
			groups: []string{"visitors"},
			want:   domainauth.RoleGuest,
		},
		{
			name:   "empty user group grants user",
			mapper: StaticRoleMapper{AdminGroup: "admins"},
			groups: nil,
			want:   domainauth.RoleUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.mapper.Map(tt.groups))
		})
	}
}
