package cli

import "errors"

var (
	// ErrNoSession is returned before any request when no credentials are available.
	ErrNoSession = errors.New("not signed in; run 'timesheetctl login' or set TIMESHEET_TOKEN")

	errInvalidTab    = errors.New("tab must be ALL, DRAFT, SUBMITTED, APPROVED or REJECTED")
	errHoursTooLong  = errors.New("--hours takes at most 7 values, Monday to Sunday")
	errNothingToEdit = errors.New("nothing to change; pass at least one field flag")
)
