package project

import "context"

type ProjectService interface {
	ListProjects(ctx context.Context, employeeID string, all bool) ([]ProjectResponse, error)
	ListTasks(ctx context.Context, projectID string) ([]TaskResponse, error)
	GetManager(ctx context.Context, projectID string) (ManagerResponse, error)
}
