package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleEmployee UserRole = "EMPLOYEE"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// Actor is the authenticated caller performing an operation.
type Actor struct {
	ID        string
	Name      string
	Role      UserRole
	IPAddress string
	UserAgent string
}

// IsAdmin reports whether the actor may act on any employee's behalf.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanActFor reports whether the actor may read or file for employeeID.
func (a Actor) CanActFor(employeeID string) bool {
	return a.IsAdmin() || (a.ID != "" && a.ID == employeeID)
}
