package timesheet

import "sort"

// Action is a row menu item.
type Action string

const (
	ActionView    Action = "view"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Perspective selects which menu an entry is rendered for.
type Perspective string

const (
	// PerspectiveOwner is the employee who logged the entry.
	PerspectiveOwner Perspective = "owner"
	// PerspectiveApprover is an admin or manager reviewing entries.
	PerspectiveApprover Perspective = "approver"
)

// ActionSet is an unordered set of actions.
type ActionSet map[Action]struct{}

func (s ActionSet) Has(a Action) bool {
	_, ok := s[a]
	return ok
}

// Sorted returns the actions in a stable order for rendering.
func (s ActionSet) Sorted() []Action {
	out := make([]Action, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return actionOrder[out[i]] < actionOrder[out[j]] })
	return out
}

var actionOrder = map[Action]int{
	ActionView:    0,
	ActionEdit:    1,
	ActionSubmit:  2,
	ActionApprove: 3,
	ActionReject:  4,
	ActionDelete:  5,
}

// AvailableActions is the single source of row menu eligibility.
func AvailableActions(e Entry, p Perspective) ActionSet {
	set := ActionSet{ActionView: {}}
	switch p {
	case PerspectiveOwner:
		if e.Status.IsEditable() {
			set[ActionEdit] = struct{}{}
		}
		if CanTransition(e.Status, StatusSubmitted) {
			set[ActionSubmit] = struct{}{}
		}
	case PerspectiveApprover:
		if CanTransition(e.Status, StatusApproved) {
			set[ActionApprove] = struct{}{}
		}
		if CanTransition(e.Status, StatusRejected) {
			set[ActionReject] = struct{}{}
		}
	}
	if e.Status.IsDeletable() {
		set[ActionDelete] = struct{}{}
	}
	return set
}

// CountByStatus tallies entries per status; used for tab badges and the
// submit-all toggle.
func CountByStatus(entries []Entry) map[Status]int {
	counts := make(map[Status]int, len(transitions))
	for _, e := range entries {
		counts[e.Status]++
	}
	return counts
}
