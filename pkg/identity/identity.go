// Package identity carries the caller's identity and role through request
// handling. Roles are a closed enum; authorization decisions are made against
// an explicit Principal instead of ambient session state.
package identity

import "gift-tracker/pkg/apperrors"

type Role string

const (
	RoleAdmin            Role = "Admin"
	RoleEventManager     Role = "Event Manager"
	RoleEventCoordinator Role = "Event Coordinator"
)

type Principal struct {
	UserID   string
	Username string
	Role     Role
}

// ParseRole validates a stored role string against the known roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleEventManager, RoleEventCoordinator:
		return Role(s), nil
	}
	return "", apperrors.Validationf("unknown role %q", s)
}

// AllRoles lists the assignable roles.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleEventManager, RoleEventCoordinator}
}

// CanModifyGifts reports whether the principal may create, update, issue or
// delete gifts. Only Admin and Event Manager can.
func (p Principal) CanModifyGifts() bool {
	return p.Role == RoleAdmin || p.Role == RoleEventManager
}

// CanManageUsers reports whether the principal may administer user accounts.
func (p Principal) CanManageUsers() bool {
	return p.Role == RoleAdmin
}
