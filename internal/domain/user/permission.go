package user

type Permission string

const (
	PermissionTimesheetViewOwn Permission = "timesheet.view_own"
	PermissionTimesheetCreate  Permission = "timesheet.create"
	PermissionTimesheetViewAll Permission = "timesheet.view_all"
	PermissionTimesheetApprove Permission = "timesheet.approve"
	PermissionTimesheetExport  Permission = "timesheet.export"

	PermissionProjectViewAll Permission = "project.view_all"

	PermissionNotificationManage Permission = "notification.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionTimesheetViewOwn,
		PermissionTimesheetCreate,
		PermissionTimesheetViewAll,
		PermissionTimesheetApprove,
		PermissionTimesheetExport,
		PermissionProjectViewAll,
		PermissionNotificationManage,
	},
	RoleManager: {
		PermissionTimesheetViewOwn,
		PermissionTimesheetCreate,
		PermissionTimesheetViewAll,
		PermissionTimesheetApprove,
		PermissionTimesheetExport,
		PermissionProjectViewAll,
	},
	RoleEmployee: {
		PermissionTimesheetViewOwn,
		PermissionTimesheetCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}
