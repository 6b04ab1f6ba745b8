package project

import "errors"

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrManagerNotFound   = errors.New("project has no manager assigned")
	ErrNotProjectMember  = errors.New("employee is not assigned to this project")
	ErrProjectIDRequired = errors.New("project id is required")
)
