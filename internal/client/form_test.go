package client

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/project"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestForm(api *fakeAPI) *EntryForm {
	return NewEntryForm(api, timesheet.WeekOf(mon8), timesheet.NewOptions(nil, nil))
}

func TestEntryForm_ValidateBlocksSubmit(t *testing.T) {
	api := newFakeAPI()
	f := newTestForm(api)

	_, err := f.Submit(context.Background())

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{"hours_by_day", "project_id", "task_id"}, verrs.Fields())
	assert.Empty(t, api.created, "no network call on invalid input")
}

func TestEntryForm_HoursOutOfRange(t *testing.T) {
	f := newTestForm(newFakeAPI())
	f.SetHoursValue(0, decimal.NewFromInt(25))
	f.SetHoursValue(1, decimal.NewFromInt(-1))

	var verrs validator.ValidationErrors
	require.ErrorAs(t, f.Validate(), &verrs)
	assert.True(t, verrs.Has(timesheet.HoursField(0)))
	assert.True(t, verrs.Has(timesheet.HoursField(1)))
	assert.False(t, verrs.Has("hours_by_day"), "Monday is positive")
}

func TestEntryForm_SetHoursCoercesInput(t *testing.T) {
	f := newTestForm(newFakeAPI())
	f.SetHours(0, "7.9")
	f.SetHours(1, "abc")
	f.SetHours(2, "30")
	f.SetHours(9, "1")

	h := f.Hours()
	assert.Equal(t, "8", h[0].String())
	assert.True(t, h[1].IsZero())
	assert.Equal(t, "24", h[2].String())
	assert.Equal(t, "32", f.Total().String())
}

func TestEntryForm_SetProjectDropsMissingTask(t *testing.T) {
	api := newFakeAPI()
	api.tasks["p1"] = []project.TaskResponse{{ID: "t1", ProjectID: "p1", Name: "Design"}}
	api.tasks["p2"] = []project.TaskResponse{{ID: "t2", ProjectID: "p2", Name: "Build"}}
	f := newTestForm(api)
	ctx := context.Background()

	require.NoError(t, f.SetProject(ctx, "p1"))
	f.SetTask("t1")
	require.NoError(t, f.SetProject(ctx, "p2"))

	assert.Equal(t, "", f.TaskID())
	assert.Equal(t, "t2", f.Tasks()[0].ID)
}

func TestEntryForm_FailedTaskFetchClearsSelection(t *testing.T) {
	api := newFakeAPI()
	api.tasks["p1"] = []project.TaskResponse{{ID: "t1", ProjectID: "p1", Name: "Design"}}
	api.taskErr["p2"] = errors.New("boom")
	f := newTestForm(api)
	f.SetHours(0, "8")
	ctx := context.Background()

	require.NoError(t, f.SetProject(ctx, "p1"))
	f.SetTask("t1")
	require.EqualError(t, f.SetProject(ctx, "p2"), "boom")

	assert.Equal(t, "p2", f.ProjectID())
	assert.Equal(t, "", f.TaskID())
	assert.Empty(t, f.Tasks())

	_, err := f.Submit(ctx)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("task_id"))
	assert.Empty(t, api.created, "a task of another project is never sent")
}

func TestEntryForm_SupersededTaskFetchIsDiscarded(t *testing.T) {
	api := newFakeAPI()
	api.tasks["slow"] = []project.TaskResponse{{ID: "slow-task"}}
	api.tasks["fast"] = []project.TaskResponse{{ID: "fast-task"}}
	gate := make(chan struct{})
	api.taskGates["slow"] = gate
	f := newTestForm(api)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- f.SetProject(ctx, "slow") }()
	require.Equal(t, "slow", <-api.started)

	require.NoError(t, f.SetProject(ctx, "fast"))
	<-api.started
	close(gate)

	assert.ErrorIs(t, <-done, ErrSuperseded)
	require.Len(t, f.Tasks(), 1)
	assert.Equal(t, "fast-task", f.Tasks()[0].ID)
}

func TestEntryForm_CreateThenUpdate(t *testing.T) {
	api := newFakeAPI()
	api.tasks["p1"] = []project.TaskResponse{{ID: "t1"}}
	f := newTestForm(api)
	ctx := context.Background()

	require.NoError(t, f.SetProject(ctx, "p1"))
	<-api.started
	f.SetTask("t1")
	f.SetHours(0, "8")
	f.SetComments("  ")

	saved, err := f.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, timesheet.StatusDraft, saved.Status)
	require.Len(t, api.created, 1)
	assert.Equal(t, "2024-01-08", api.created[0].WeekStart)
	assert.Equal(t, timesheet.DefaultTimeCategories[0], api.created[0].TimeCategory)
	assert.Nil(t, api.created[0].Comments)
	assert.True(t, f.IsEdit())

	f.SetHours(1, "2")
	_, err = f.Submit(ctx)
	require.NoError(t, err)
	require.Len(t, api.updated, 1)
	assert.Equal(t, "new-1", api.updated[0].ID)
	assert.Len(t, api.created, 1)
}

func TestEntryForm_FailureKeepsState(t *testing.T) {
	api := newFakeAPI()
	api.saveErr = &APIError{StatusCode: http.StatusForbidden, Message: "you are not a member of this project"}
	e := entry("a", mon8, timesheet.StatusRejected)
	f, err := EditEntryForm(api, e)
	require.NoError(t, err)

	_, err = f.Submit(context.Background())

	require.Error(t, err)
	assert.Equal(t, "you are not a member of this project", Message(err))
	assert.Equal(t, "task-1", f.TaskID())
	assert.Equal(t, e.HoursByDay, f.Hours())
}

func TestEditEntryForm_RefusesLockedEntries(t *testing.T) {
	for _, s := range []timesheet.Status{timesheet.StatusSubmitted, timesheet.StatusApproved} {
		_, err := EditEntryForm(newFakeAPI(), entry("a", mon8, s))
		assert.ErrorIs(t, err, timesheet.ErrEntryNotEditable, s)
	}
}
