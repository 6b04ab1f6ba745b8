package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/project"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const projectSelect = `
	SELECT p.id, p.name, p.code, p.manager_id, m.full_name, p.is_active, p.created_at, p.updated_at
	FROM projects p
	LEFT JOIN employees m ON m.id = p.manager_id
`

type projectRepositoryImpl struct {
	db *database.DB
}

func NewProjectRepository(db *database.DB) project.ProjectRepository {
	return &projectRepositoryImpl{db: db}
}

func scanProject(row pgx.Row) (project.Project, error) {
	var p project.Project
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.ManagerID, &p.ManagerName, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *projectRepositoryImpl) queryProjects(ctx context.Context, query string, args ...interface{}) ([]project.Project, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *projectRepositoryImpl) ListAll(ctx context.Context) ([]project.Project, error) {
	return r.queryProjects(ctx, projectSelect+` WHERE p.is_active ORDER BY p.name`)
}

func (r *projectRepositoryImpl) ListByMember(ctx context.Context, employeeID string) ([]project.Project, error) {
	query := projectSelect + `
		JOIN project_members pm ON pm.project_id = p.id
		WHERE p.is_active AND pm.employee_id = $1
		ORDER BY p.name
	`
	return r.queryProjects(ctx, query, employeeID)
}

func (r *projectRepositoryImpl) GetByID(ctx context.Context, id string) (project.Project, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanProject(q.QueryRow(ctx, projectSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrProjectNotFound
		}
		return project.Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (r *projectRepositoryImpl) IsMember(ctx context.Context, projectID, employeeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM project_members WHERE project_id = $1 AND employee_id = $2
		)
	`, projectID, employeeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check project membership: %w", err)
	}
	return exists, nil
}

func (r *projectRepositoryImpl) ListTasks(ctx context.Context, projectID string) ([]project.Task, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, project_id, name, is_active
		FROM project_tasks
		WHERE project_id = $1 AND is_active
		ORDER BY name
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks, err := pgx.CollectRows(rows, pgx.RowToStructByPos[project.Task])
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}
	return tasks, nil
}

func (r *projectRepositoryImpl) GetTask(ctx context.Context, taskID string) (project.Task, error) {
	q := GetQuerier(ctx, r.db)

	var t project.Task
	err := q.QueryRow(ctx, `
		SELECT id, project_id, name, is_active FROM project_tasks WHERE id = $1
	`, taskID).Scan(&t.ID, &t.ProjectID, &t.Name, &t.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Task{}, project.ErrTaskNotFound
		}
		return project.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

func (r *projectRepositoryImpl) GetManager(ctx context.Context, projectID string) (project.Manager, error) {
	q := GetQuerier(ctx, r.db)

	var m project.Manager
	var managerID *string
	err := q.QueryRow(ctx, `
		SELECT p.manager_id, COALESCE(e.full_name, ''), u.id, u.email
		FROM projects p
		LEFT JOIN employees e ON e.id = p.manager_id
		LEFT JOIN users u ON u.id = e.user_id
		WHERE p.id = $1
	`, projectID).Scan(&managerID, &m.FullName, &m.UserID, &m.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Manager{}, project.ErrProjectNotFound
		}
		return project.Manager{}, fmt.Errorf("failed to get project manager: %w", err)
	}
	if managerID == nil {
		return project.Manager{}, project.ErrManagerNotFound
	}
	m.EmployeeID = *managerID
	return m, nil
}
