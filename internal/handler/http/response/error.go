package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/auth"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/notification"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/project"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/user"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/export"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrAccountInactive), errors.Is(err, user.ErrUserInactive):
		Forbidden(w, "Account is inactive")
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")

	// User / permission errors
	case errors.Is(err, user.ErrEmployeeProfileRequired):
		Forbidden(w, "An employee profile is required to log time")
	case errors.Is(err, user.ErrInsufficientPermissions), errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Insufficient permissions")

	// Timesheet domain errors
	case errors.Is(err, timesheet.ErrEntryNotFound):
		NotFound(w, "Timesheet entry not found")
	case errors.Is(err, timesheet.ErrUnauthorizedAccess):
		Forbidden(w, "You do not have access to this timesheet entry")
	case errors.Is(err, timesheet.ErrEntryNotEditable):
		Conflict(w, "Only draft or rejected entries can be edited")
	case errors.Is(err, timesheet.ErrEntryNotDeletable):
		Conflict(w, "Approved entries cannot be deleted")
	case errors.Is(err, timesheet.ErrInvalidTransition):
		Conflict(w, "This status change is not allowed for the entry's current status")
	case errors.Is(err, timesheet.ErrNoDraftEntries):
		Conflict(w, "There are no draft entries to submit")
	case errors.Is(err, timesheet.ErrNoHoursLogged):
		ValidationError(w, map[string]string{"hours_by_day": timesheet.ErrNoHoursLogged.Error()})
	case errors.Is(err, timesheet.ErrRejectionReason):
		ValidationError(w, map[string]string{"reason": timesheet.ErrRejectionReason.Error()})
	case errors.Is(err, timesheet.ErrTaskNotInProject):
		ValidationError(w, map[string]string{"task_id": timesheet.ErrTaskNotInProject.Error()})
	case errors.Is(err, timesheet.ErrInvalidWeekStart):
		ValidationError(w, map[string]string{"week_start": timesheet.ErrInvalidWeekStart.Error()})
	case errors.Is(err, timesheet.ErrInvalidShiftDirection):
		BadRequest(w, err.Error(), nil)

	// Project domain errors
	case errors.Is(err, project.ErrProjectNotFound):
		NotFound(w, "Project not found")
	case errors.Is(err, project.ErrTaskNotFound):
		NotFound(w, "Task not found")
	case errors.Is(err, project.ErrManagerNotFound):
		NotFound(w, "Project has no manager assigned")
	case errors.Is(err, project.ErrNotProjectMember):
		Forbidden(w, "You are not assigned to this project")
	case errors.Is(err, project.ErrProjectIDRequired):
		BadRequest(w, "Project ID is required", nil)

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrUnauthorized):
		Forbidden(w, "You do not have access to this notification")
	case errors.Is(err, notification.ErrInvalidNotificationType):
		ValidationError(w, map[string]string{"notification_type": err.Error()})
	case errors.Is(err, notification.ErrServiceStopped):
		ServiceUnavailable(w, "Notifications are temporarily unavailable")

	// Export
	case errors.Is(err, export.ErrUnsupportedFormat):
		BadRequest(w, "format must be xlsx or pdf", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
