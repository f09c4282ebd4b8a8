package model

import (
	"fmt"
	"strings"
)

// Role is the closed set of access levels an account can hold. Using a
// named type instead of a free string means an invalid role can only be
// produced by bypassing ParseRole, not by a typo in a comparison.
type Role string

const (
	RoleClient   Role = "Client"   // self-registered buyers; may submit reviews
	RoleEmployee Role = "Employee" // staff; manages inventory and moderation
	RoleAdmin    Role = "Admin"    // full access including user management
)

// Level places roles on a total order so that authorization checks can
// be expressed as "at least". Admin therefore satisfies every Employee
// gate. Unknown roles rank below Client and fail every check.
func (r Role) Level() int {
	switch r {
	case RoleClient:
		return 1
	case RoleEmployee:
		return 2
	case RoleAdmin:
		return 3
	}
	return 0
}

// AtLeast reports whether r grants the permissions of min.
func (r Role) AtLeast(min Role) bool { return r.Level() >= min.Level() && r.Level() > 0 }

// ParseRole normalizes and validates a role string coming from a form or
// a token claim. It is the only way to turn external input into a Role.
func ParseRole(s string) (Role, error) {
	switch strings.TrimSpace(s) {
	case string(RoleClient), "client", "CLIENT":
		return RoleClient, nil
	case string(RoleEmployee), "employee", "EMPLOYEE":
		return RoleEmployee, nil
	case string(RoleAdmin), "admin", "ADMIN":
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Roles lists every valid role, used to build select inputs on the
// admin user-management forms.
func Roles() []Role { return []Role{RoleClient, RoleEmployee, RoleAdmin} }
