package domain

import "fmt"

// RoleName is one of the closed set of roles known to the system. Roles are
// lazily created the first time a registration needs them.
type RoleName string

const (
	RoleBooker   RoleName = "Booker"
	RoleEmployee RoleName = "Employee"
	RoleAdmin    RoleName = "Admin"
)

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (RoleName, error) {
	switch RoleName(s) {
	case RoleBooker, RoleEmployee, RoleAdmin:
		return RoleName(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Role is a named category in the many-to-many membership relation with
// accounts.
type Role struct {
	ID   string   `json:"id"`
	Name RoleName `json:"name"`
}
