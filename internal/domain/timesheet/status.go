package timesheet

import "strings"

// Status is the approval lifecycle stage of an entry.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected}
}

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, bool) {
	status := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return status, true
	}
	return "", false
}

func (s Status) String() string {
	return string(s)
}

// transitions is the single table of legal status changes.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted},
	StatusRejected:  {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusRejected},
	StatusApproved:  {},
}

// CanTransition reports whether an entry in status from may move to status to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsEditable reports whether the owning employee may still change the entry.
func (s Status) IsEditable() bool {
	return s == StatusDraft || s == StatusRejected
}

// IsDeletable reports whether the entry may be removed. Approved entries are frozen.
func (s Status) IsDeletable() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusRejected:
		return true
	}
	return false
}
