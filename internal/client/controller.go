package client

import (
	"context"
	"strings"
	"sync"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/validator"
)

// TransitionAPI is the part of the REST client the approval controller uses.
type TransitionAPI interface {
	ApproveEntry(ctx context.Context, id string) (timesheet.Entry, error)
	RejectEntry(ctx context.Context, id, reason string) (timesheet.Entry, error)
}

// StatusTransitionController approves and rejects submitted entries. Nothing
// changes locally until the server confirms, and only one change per entry may
// be in flight.
type StatusTransitionController struct {
	api  TransitionAPI
	list *EntryList

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewStatusTransitionController reports confirmed changes to list, which may be nil.
func NewStatusTransitionController(api TransitionAPI, list *EntryList) *StatusTransitionController {
	return &StatusTransitionController{
		api:      api,
		list:     list,
		inFlight: make(map[string]struct{}),
	}
}

// Approve moves a SUBMITTED entry to APPROVED. selected is nil when nothing is selected.
func (c *StatusTransitionController) Approve(ctx context.Context, selected *timesheet.Entry) (timesheet.Entry, error) {
	if selected == nil {
		return timesheet.Entry{}, ErrNoSelection
	}
	if !timesheet.CanTransition(selected.Status, timesheet.StatusApproved) {
		return timesheet.Entry{}, c.failed(ctx, timesheet.ErrInvalidTransition)
	}

	return c.run(ctx, selected.ID, "Timesheet entry approved", func() (timesheet.Entry, error) {
		return c.api.ApproveEntry(ctx, selected.ID)
	})
}

// Reject moves a SUBMITTED entry to REJECTED. A blank reason is refused
// without a request.
func (c *StatusTransitionController) Reject(ctx context.Context, selected *timesheet.Entry, reason string) (timesheet.Entry, error) {
	if selected == nil {
		return timesheet.Entry{}, ErrNoSelection
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return timesheet.Entry{}, validator.ValidationErrors{{Field: "reason", Message: timesheet.ErrRejectionReason.Error()}}
	}
	if !timesheet.CanTransition(selected.Status, timesheet.StatusRejected) {
		return timesheet.Entry{}, c.failed(ctx, timesheet.ErrInvalidTransition)
	}

	return c.run(ctx, selected.ID, "Timesheet entry rejected", func() (timesheet.Entry, error) {
		return c.api.RejectEntry(ctx, selected.ID, reason)
	})
}

// InFlight reports whether a change for id is pending.
func (c *StatusTransitionController) InFlight(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[id]
	return ok
}

func (c *StatusTransitionController) run(ctx context.Context, id, okMessage string, call func() (timesheet.Entry, error)) (timesheet.Entry, error) {
	c.mu.Lock()
	if _, busy := c.inFlight[id]; busy {
		c.mu.Unlock()
		return timesheet.Entry{}, ErrTransitionInFlight
	}
	c.inFlight[id] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, id)
		c.mu.Unlock()
	}()

	updated, err := call()
	if err != nil {
		return timesheet.Entry{}, c.failed(ctx, err)
	}
	if c.list != nil {
		c.list.Confirmed(updated, okMessage)
	}
	return updated, nil
}

func (c *StatusTransitionController) failed(ctx context.Context, err error) error {
	if c.list != nil {
		return c.list.fail(ctx, err)
	}
	return err
}
