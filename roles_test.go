package auth_test

import (
	"testing"

	auth "github.com/BrayanMorningstar237/waiter-backend-sub001"
	"github.com/stretchr/testify/assert"
)

func TestUserRoleIsAtLeast(t *testing.T) {
	tests := []struct {
		name     string
		role     auth.UserRole
		minRole  auth.UserRole
		expected bool
	}{
		{"user meets user", auth.RoleUser, auth.RoleUser, true},
		{"user below admin", auth.RoleUser, auth.RoleAdmin, false},
		{"user below super_admin", auth.RoleUser, auth.RoleSuperAdmin, false},
		{"admin dominates user", auth.RoleAdmin, auth.RoleUser, true},
		{"admin meets admin", auth.RoleAdmin, auth.RoleAdmin, true},
		{"admin below super_admin", auth.RoleAdmin, auth.RoleSuperAdmin, false},
		{"super_admin dominates user", auth.RoleSuperAdmin, auth.RoleUser, true},
		{"super_admin dominates admin", auth.RoleSuperAdmin, auth.RoleAdmin, true},
		{"super_admin meets super_admin", auth.RoleSuperAdmin, auth.RoleSuperAdmin, true},
		{"unknown role never dominates", auth.UserRole("owner"), auth.RoleUser, false},
		{"nothing dominates unknown minimum", auth.RoleSuperAdmin, auth.UserRole("owner"), false},
		{"empty role never dominates", auth.UserRole(""), auth.RoleUser, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.role.IsAtLeast(tt.minRole))
		})
	}
}

func TestUserRoleIsValid(t *testing.T) {
	assert.True(t, auth.RoleUser.IsValid())
	assert.True(t, auth.RoleAdmin.IsValid())
	assert.True(t, auth.RoleSuperAdmin.IsValid())
	assert.False(t, auth.UserRole("manager").IsValid())
	assert.False(t, auth.UserRole("").IsValid())
}

func TestUserRoleIsGlobal(t *testing.T) {
	assert.False(t, auth.RoleUser.IsGlobal())
	assert.False(t, auth.RoleAdmin.IsGlobal())
	assert.True(t, auth.RoleSuperAdmin.IsGlobal())
}

func TestParseRole(t *testing.T) {
	role, ok := auth.ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, auth.RoleAdmin, role)

	_, ok = auth.ParseRole("root")
	assert.False(t, ok)
}

func TestGetAllRoles(t *testing.T) {
	roles := auth.GetAllRoles()
	assert.Equal(t, []auth.UserRole{auth.RoleUser, auth.RoleAdmin, auth.RoleSuperAdmin}, roles)
}
