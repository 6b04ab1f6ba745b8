package project

import "context"

// ProjectRepository - interface for projects, project_members and tasks tables
type ProjectRepository interface {
	ListAll(ctx context.Context) ([]Project, error)
	ListByMember(ctx context.Context, employeeID string) ([]Project, error)
	GetByID(ctx context.Context, id string) (Project, error)
	IsMember(ctx context.Context, projectID, employeeID string) (bool, error)
	ListTasks(ctx context.Context, projectID string) ([]Task, error)
	GetTask(ctx context.Context, taskID string) (Task, error)
	GetManager(ctx context.Context, projectID string) (Manager, error)
}
