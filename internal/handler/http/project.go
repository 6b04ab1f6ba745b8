package http

import (
	"net/http"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/project"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/user"
	"github.com/cmlabs-hris/timesheet-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timesheet-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ProjectHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	ListTasks(w http.ResponseWriter, r *http.Request)
	GetManager(w http.ResponseWriter, r *http.Request)
}

type projectHandlerImpl struct {
	projectService project.ProjectService
}

func NewProjectHandler(projectService project.ProjectService) ProjectHandler {
	return &projectHandlerImpl{projectService: projectService}
}

// List returns the caller's assigned projects. Roles with project.view_all may
// pass ?all=true to list every active project.
func (h *projectHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	c, ok := middleware.ClaimsFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	all := getBoolQueryParam(r, "all", false) && user.HasPermission(c.Role, user.PermissionProjectViewAll)

	result, err := h.projectService.ListProjects(r.Context(), c.EmployeeID, all)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *projectHandlerImpl) ListTasks(w http.ResponseWriter, r *http.Request) {
	result, err := h.projectService.ListTasks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *projectHandlerImpl) GetManager(w http.ResponseWriter, r *http.Request) {
	result, err := h.projectService.GetManager(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// getBoolQueryParam reads "true" or "1" as true; anything else is defaultVal
// when the parameter is absent and false otherwise.
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}
