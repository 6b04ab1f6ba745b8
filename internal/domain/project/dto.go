package project

type ProjectResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Code        *string `json:"code,omitempty"`
	ManagerID   *string `json:"manager_id,omitempty"`
	ManagerName *string `json:"manager_name,omitempty"`
}

type TaskResponse struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
}

type ManagerResponse struct {
	EmployeeID string  `json:"employee_id"`
	FullName   string  `json:"full_name"`
	Email      *string `json:"email,omitempty"`
}

func NewProjectResponse(p Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Code:        p.Code,
		ManagerID:   p.ManagerID,
		ManagerName: p.ManagerName,
	}
}

func NewTaskResponse(t Task) TaskResponse {
	return TaskResponse{ID: t.ID, ProjectID: t.ProjectID, Name: t.Name}
}
