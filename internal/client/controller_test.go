package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_NoSelection(t *testing.T) {
	c := NewStatusTransitionController(newFakeAPI(), nil)

	_, err := c.Approve(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSelection)
	_, err = c.Reject(context.Background(), nil, "reason")
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestController_RejectNeedsReason(t *testing.T) {
	api := newFakeAPI()
	e := entry("a", mon8, timesheet.StatusSubmitted)
	c := NewStatusTransitionController(api, nil)

	_, err := c.Reject(context.Background(), &e, "   ")

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("reason"))
	assert.Empty(t, api.rejected)
}

func TestController_OnlySubmittedEntries(t *testing.T) {
	api := newFakeAPI()
	e := entry("a", mon8, timesheet.StatusDraft)
	c := NewStatusTransitionController(api, nil)

	_, err := c.Approve(context.Background(), &e)

	assert.ErrorIs(t, err, timesheet.ErrInvalidTransition)
	assert.Empty(t, api.approved)
}

func TestController_ApproveUpdatesList(t *testing.T) {
	api := newFakeAPI()
	api.byWeek["2024-01-08"] = []timesheet.Entry{entry("a", mon8, timesheet.StatusSubmitted)}
	l := loadedList(t, api, timesheet.PerspectiveApprover)
	c := NewStatusTransitionController(api, l)
	selected, _ := l.Entry("a")

	updated, err := c.Approve(context.Background(), &selected)

	require.NoError(t, err)
	assert.Equal(t, timesheet.StatusApproved, updated.Status)
	row, _ := l.Entry("a")
	assert.Equal(t, timesheet.StatusApproved, row.Status)
	assert.Equal(t, "Timesheet entry approved", l.TakeNotice().Message)
}

func TestController_RejectStoresReason(t *testing.T) {
	api := newFakeAPI()
	api.byWeek["2024-01-08"] = []timesheet.Entry{entry("a", mon8, timesheet.StatusSubmitted)}
	l := loadedList(t, api, timesheet.PerspectiveApprover)
	c := NewStatusTransitionController(api, l)
	selected, _ := l.Entry("a")

	_, err := c.Reject(context.Background(), &selected, " Wrong task ")

	require.NoError(t, err)
	assert.Equal(t, "Wrong task", api.rejected["a"])
	row, _ := l.Entry("a")
	assert.Equal(t, timesheet.StatusRejected, row.Status)
	require.NotNil(t, row.RejectionReason)
}

func TestController_FailureKeepsDisplayedStatus(t *testing.T) {
	api := newFakeAPI()
	api.byWeek["2024-01-08"] = []timesheet.Entry{entry("a", mon8, timesheet.StatusSubmitted)}
	l := loadedList(t, api, timesheet.PerspectiveApprover)
	api.approveErr = &APIError{StatusCode: http.StatusInternalServerError, Message: "database unavailable"}
	c := NewStatusTransitionController(api, l)
	selected, _ := l.Entry("a")

	_, err := c.Approve(context.Background(), &selected)

	require.Error(t, err)
	row, _ := l.Entry("a")
	assert.Equal(t, timesheet.StatusSubmitted, row.Status)
	assert.Equal(t, "database unavailable", l.TakeNotice().Message)
	assert.False(t, c.InFlight("a"))
}

func TestController_SecondCallWhileInFlight(t *testing.T) {
	api := newFakeAPI()
	api.byWeek["2024-01-08"] = []timesheet.Entry{entry("a", mon8, timesheet.StatusSubmitted)}
	api.approveGate = make(chan struct{})
	c := NewStatusTransitionController(api, nil)
	e := entry("a", mon8, timesheet.StatusSubmitted)

	done := make(chan error, 1)
	go func() {
		_, err := c.Approve(context.Background(), &e)
		done <- err
	}()
	assert.Eventually(t, func() bool { return c.InFlight("a") }, time.Second, time.Millisecond)

	_, err := c.Approve(context.Background(), &e)
	assert.ErrorIs(t, err, ErrTransitionInFlight)

	close(api.approveGate)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"a"}, api.approved)
}
