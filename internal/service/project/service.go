package project

import (
	"context"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/project"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/validator"
)

type ProjectServiceImpl struct {
	project.ProjectRepository
}

func NewProjectService(projectRepository project.ProjectRepository) project.ProjectService {
	return &ProjectServiceImpl{ProjectRepository: projectRepository}
}

// ListProjects returns every active project when all is set, otherwise only
// the projects employeeID is assigned to.
func (s *ProjectServiceImpl) ListProjects(ctx context.Context, employeeID string, all bool) ([]project.ProjectResponse, error) {
	var (
		projects []project.Project
		err      error
	)
	if all {
		projects, err = s.ProjectRepository.ListAll(ctx)
	} else {
		projects, err = s.ProjectRepository.ListByMember(ctx, employeeID)
	}
	if err != nil {
		return nil, err
	}

	resp := make([]project.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, project.NewProjectResponse(p))
	}
	return resp, nil
}

func (s *ProjectServiceImpl) ListTasks(ctx context.Context, projectID string) ([]project.TaskResponse, error) {
	if validator.IsEmpty(projectID) {
		return nil, project.ErrProjectIDRequired
	}
	if _, err := s.ProjectRepository.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	tasks, err := s.ProjectRepository.ListTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}

	resp := make([]project.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, project.NewTaskResponse(t))
	}
	return resp, nil
}

// GetManager resolves the auto-filled manager shown next to a project pick.
func (s *ProjectServiceImpl) GetManager(ctx context.Context, projectID string) (project.ManagerResponse, error) {
	if validator.IsEmpty(projectID) {
		return project.ManagerResponse{}, project.ErrProjectIDRequired
	}
	m, err := s.ProjectRepository.GetManager(ctx, projectID)
	if err != nil {
		return project.ManagerResponse{}, err
	}
	return project.ManagerResponse{EmployeeID: m.EmployeeID, FullName: m.FullName, Email: m.Email}, nil
}
