package domain

import "time"

// Role enumerates the closed set of actor roles.
type Role string

const (
	RoleRequester  Role = "REQUESTER"
	RoleTechnician Role = "TECHNICIAN"
	RoleAdmin      Role = "ADMIN"
)

// ParseRole maps a raw string onto the closed role set.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleRequester, RoleTechnician, RoleAdmin:
		return Role(raw), true
	default:
		return "", false
	}
}

// Valid reports whether the role is one of the three defined variants.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Principal is the authenticated actor carried through a single request.
// It is derived fresh from a verified token and never persisted as session state.
type Principal struct {
	ID    int64
	Name  string
	Email string
	Role  Role
}

// User is the persisted account record behind a Principal.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal projects the account onto its request-scoped identity.
func (u *User) Principal() *Principal {
	return &Principal{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
