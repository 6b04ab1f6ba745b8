package timesheet

import "errors"

var (
	ErrEntryNotFound         = errors.New("timesheet entry not found")
	ErrEntryNotEditable      = errors.New("timesheet entry can only be changed while in draft or rejected status")
	ErrEntryNotDeletable     = errors.New("approved timesheet entries cannot be deleted")
	ErrInvalidTransition     = errors.New("status transition not allowed")
	ErrNoHoursLogged         = errors.New("at least one day must have hours before submitting")
	ErrRejectionReason       = errors.New("rejection reason is required")
	ErrNoDraftEntries        = errors.New("no draft entries to submit")
	ErrUnauthorizedAccess    = errors.New("timesheet entry belongs to another employee")
	ErrTaskNotInProject      = errors.New("task does not belong to the selected project")
	ErrInvalidShiftDirection = errors.New("week shift direction must be -1 or +1")
	ErrInvalidWeekStart      = errors.New("week_start must be a date in YYYY-MM-DD format")
)
