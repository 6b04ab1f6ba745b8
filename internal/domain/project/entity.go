package project

import "time"

// Project is something employees log time against.
type Project struct {
	ID          string
	Name        string
	Code        *string
	ManagerID   *string
	ManagerName *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Task belongs to exactly one project.
type Task struct {
	ID        string
	ProjectID string
	Name      string
	IsActive  bool
}

// Manager is the employee accountable for a project.
type Manager struct {
	EmployeeID string
	FullName   string
	// UserID and Email address submission notices; nil when the manager has no login.
	UserID *string
	Email  *string
}
