package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // HR admin - approves and exports all timesheets
	RoleManager  Role = "manager"  // Project manager - approves timesheets
	RoleEmployee Role = "employee" // Logs own time
)

// ParseRole returns the role and whether it is known.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return r, true
	}
	return "", false
}

type User struct {
	ID           string
	Email        string
	PasswordHash *string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DTO / Join
	EmployeeID   *string
	EmployeeName *string
}

// IsAdmin checks if user is an HR admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanApprove checks if user can approve timesheets
func (u *User) CanApprove() bool {
	return CanApprove(u.Role)
}

// CanApprove reports whether role may approve or reject timesheets.
func CanApprove(r Role) bool {
	return HasPermission(r, PermissionTimesheetApprove)
}
