package domain

const (
	RoleCustomer = "customer"
	RoleSupport  = "support"
)

// PrivilegedRoles may read any owner-scoped resource.
var PrivilegedRoles = map[string]struct{}{
	RoleSupport: {},
}

// User models an identity known to the gateway. Users are static fixtures
// loaded once at startup.
type User struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// IsPrivileged reports whether the user's role bypasses ownership checks.
func (u *User) IsPrivileged() bool {
	if u == nil {
		return false
	}
	_, ok := PrivilegedRoles[u.Role]
	return ok
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleSupport
}
