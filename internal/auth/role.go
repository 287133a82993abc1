package auth

import "fmt"

// Role is the capability tier of a platform user.
type Role string

const (
	RoleUser  Role = "user"
	RoleCoach Role = "coach"
	RoleAdmin Role = "admin"
)

func ParseRole(role string) (Role, error) {
	switch Role(role) {
	case RoleUser, RoleCoach, RoleAdmin:
		return Role(role), nil
	default:
		return "", fmt.Errorf("unknown role: %s", role)
	}
}

// CanAdmin reports whether the role may perform admin-only actions.
func (r Role) CanAdmin() bool {
	return r == RoleAdmin
}

// CanCoach reports whether the role may perform coach-tier actions.
func (r Role) CanCoach() bool {
	return r == RoleCoach || r == RoleAdmin
}

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID int
	Role   Role
}
