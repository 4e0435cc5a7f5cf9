package auth

// UserRole is the user's role
type UserRole string

const (
	// RoleUser is a regular waiter/staff account scoped to one restaurant
	RoleUser UserRole = "user"
	// RoleAdmin manages a single restaurant
	RoleAdmin UserRole = "admin"
	// RoleSuperAdmin is the global operator role, not tenant scoped
	RoleSuperAdmin UserRole = "super_admin"
)

// roleHierarchy defines the total dominance order used by access
// guards: user < admin < super_admin.
var roleHierarchy = map[UserRole]int{
	RoleUser:       0,
	RoleAdmin:      1,
	RoleSuperAdmin: 2,
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	_, ok := roleHierarchy[r]
	return ok
}

// IsAtLeast checks if this role meets the minimum required level.
// Unknown roles on either side never dominate anything.
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	currentLevel, ok := roleHierarchy[r]
	if !ok {
		return false
	}

	minLevel, ok := roleHierarchy[minRole]
	if !ok {
		return false
	}

	return currentLevel >= minLevel
}

// IsGlobal reports whether the role escapes tenant scoping.
func (r UserRole) IsGlobal() bool {
	return r == RoleSuperAdmin
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleUser,
		RoleAdmin,
		RoleSuperAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}
