package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one employee's logged hours against one project task for one week.
type Entry struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	// OwnerUserID and OwnerEmail are the login account of the employee; used to
	// address notifications.
	OwnerUserID string
	OwnerEmail  string

	ProjectID   string
	ProjectName string
	TaskID      string
	TaskName    string
	ManagerID   *string
	ManagerName *string

	WeekStart time.Time
	WeekEnd   time.Time

	HoursByDay   HoursByDay
	TimeCategory string
	ResourcePlan string
	Comments     *string

	Status          Status
	RejectionReason *string

	CreatedAt   time.Time
	SubmittedAt *time.Time
	UpdatedAt   time.Time
}

// TotalHours is derived from the day cells on every call.
func (e Entry) TotalHours() decimal.Decimal {
	return e.HoursByDay.Total()
}

func (e Entry) Week() Week {
	return WeekOf(e.WeekStart)
}

// WithWeek aligns the entry to the week containing t.
func (e Entry) WithWeek(t time.Time) Entry {
	w := WeekOf(t)
	e.WeekStart = w.Start
	e.WeekEnd = w.End()
	return e
}

// Submitted returns a copy moved to SUBMITTED with any previous rejection cleared.
func (e Entry) Submitted(at time.Time) (Entry, error) {
	if !CanTransition(e.Status, StatusSubmitted) {
		return e, ErrInvalidTransition
	}
	if !e.HoursByDay.HasPositive() {
		return e, ErrNoHoursLogged
	}
	e.Status = StatusSubmitted
	e.RejectionReason = nil
	e.SubmittedAt = &at
	return e, nil
}

// Approved returns a copy moved to APPROVED.
func (e Entry) Approved() (Entry, error) {
	if !CanTransition(e.Status, StatusApproved) {
		return e, ErrInvalidTransition
	}
	e.Status = StatusApproved
	e.RejectionReason = nil
	return e, nil
}

// Rejected returns a copy moved to REJECTED carrying reason.
func (e Entry) Rejected(reason string) (Entry, error) {
	if !CanTransition(e.Status, StatusRejected) {
		return e, ErrInvalidTransition
	}
	if reason == "" {
		return e, ErrRejectionReason
	}
	e.Status = StatusRejected
	e.RejectionReason = &reason
	return e, nil
}
