package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserInactive            = errors.New("user account is disabled")
	ErrEmployeeProfileRequired = errors.New("user has no employee profile")
	ErrAdminPrivilegeRequired  = errors.New("admin privilege required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
