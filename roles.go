package auth

// UserRole is the user's global role
type UserRole = string

const (
	// RoleUser is the default role assigned at signup
	RoleUser UserRole = "user"
	// RoleModerator can manage user generated content
	RoleModerator UserRole = "moderator"
	// RoleAdmin can manage users and roles
	RoleAdmin UserRole = "admin"
)

var roleRank = map[UserRole]int{
	RoleUser:      1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	_, ok := roleRank[r]
	return ok
}

// ParseRole returns the normalized role and whether it was recognized
func ParseRole(s string) (UserRole, bool) {
	if IsValidRole(s) {
		return s, true
	}
	return "", false
}

// RoleAtLeast checks if role ranks at or above minRole
func RoleAtLeast(role, minRole UserRole) bool {
	return roleRank[role] >= roleRank[minRole]
}
