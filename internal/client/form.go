package client

import (
	"context"
	"strings"
	"sync"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/project"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// FormAPI is the part of the REST client the entry form uses.
type FormAPI interface {
	ListTasks(ctx context.Context, projectID string) ([]project.TaskResponse, error)
	CreateEntry(ctx context.Context, req timesheet.CreateEntryRequest) (timesheet.Entry, error)
	UpdateEntry(ctx context.Context, req timesheet.UpdateEntryRequest) (timesheet.Entry, error)
}

// EntryForm collects one entry for create or edit.
type EntryForm struct {
	api FormAPI

	mu           sync.Mutex
	id           string
	week         timesheet.Week
	projectID    string
	taskID       string
	hours        timesheet.HoursByDay
	timeCategory string
	resourcePlan string
	comments     string

	tasks   []project.TaskResponse
	taskSeq uint64
}

// NewEntryForm starts a blank form for week. The pickers default to the first
// option the server offers.
func NewEntryForm(api FormAPI, week timesheet.Week, opts timesheet.Options) *EntryForm {
	f := &EntryForm{api: api, week: week}
	if len(opts.TimeCategories) > 0 {
		f.timeCategory = opts.TimeCategories[0]
	}
	if len(opts.ResourcePlans) > 0 {
		f.resourcePlan = opts.ResourcePlans[0]
	}
	return f
}

// EditEntryForm pre-populates a form from e. Only DRAFT and REJECTED entries
// can be edited.
func EditEntryForm(api FormAPI, e timesheet.Entry) (*EntryForm, error) {
	if !e.Status.IsEditable() {
		return nil, timesheet.ErrEntryNotEditable
	}
	f := &EntryForm{
		api:          api,
		id:           e.ID,
		week:         e.Week(),
		projectID:    e.ProjectID,
		taskID:       e.TaskID,
		hours:        e.HoursByDay,
		timeCategory: e.TimeCategory,
		resourcePlan: e.ResourcePlan,
	}
	if e.Comments != nil {
		f.comments = *e.Comments
	}
	return f, nil
}

// IsEdit reports whether Submit updates an existing entry.
func (f *EntryForm) IsEdit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id != ""
}

// SetProject selects a project and fetches its tasks. When the response is for
// the current project the task list is replaced and a selected task missing
// from it is cleared. A failed fetch clears both. A response for a project that
// has since been replaced is dropped with ErrSuperseded.
func (f *EntryForm) SetProject(ctx context.Context, projectID string) error {
	f.mu.Lock()
	f.projectID = strings.TrimSpace(projectID)
	f.taskSeq++
	seq := f.taskSeq
	id := f.projectID
	f.mu.Unlock()

	if id == "" {
		f.mu.Lock()
		f.tasks = nil
		f.taskID = ""
		f.mu.Unlock()
		return nil
	}

	tasks, err := f.api.ListTasks(ctx, id)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.taskSeq || id != f.projectID {
		return ErrSuperseded
	}
	if err != nil {
		// The old list belongs to the previous project.
		f.tasks = nil
		f.taskID = ""
		return err
	}
	f.tasks = tasks
	if f.taskID != "" && !hasTask(tasks, f.taskID) {
		f.taskID = ""
	}
	return nil
}

func hasTask(tasks []project.TaskResponse, id string) bool {
	for _, t := range tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Tasks is the task list of the selected project.
func (f *EntryForm) Tasks() []project.TaskResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]project.TaskResponse(nil), f.tasks...)
}

func (f *EntryForm) SetTask(taskID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taskID = strings.TrimSpace(taskID)
}

// SetHours parses a day cell. Non-numeric input becomes 0; values are rounded
// to the quarter hour and clamped to [0, 24].
func (f *EntryForm) SetHours(day int, input string) {
	if day < 0 || day >= timesheet.DaysPerWeek {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hours[day] = timesheet.ParseHours(input)
}

// SetHoursValue stores a day value as given; Validate reports values out of range.
func (f *EntryForm) SetHoursValue(day int, v decimal.Decimal) {
	if day < 0 || day >= timesheet.DaysPerWeek {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hours[day] = v
}

func (f *EntryForm) SetTimeCategory(c string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeCategory = c
}

func (f *EntryForm) SetResourcePlan(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resourcePlan = p
}

func (f *EntryForm) SetComments(c string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = c
}

func (f *EntryForm) Hours() timesheet.HoursByDay {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hours
}

func (f *EntryForm) ProjectID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.projectID
}

func (f *EntryForm) TaskID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.taskID
}

func (f *EntryForm) Total() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hours.Total()
}

// Validate runs the checks that must pass before anything is sent.
func (f *EntryForm) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validate()
}

func (f *EntryForm) validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.projectID) {
		errs = append(errs, validator.ValidationError{Field: "project_id", Message: "Project is required"})
	}
	if validator.IsEmpty(f.taskID) {
		errs = append(errs, validator.ValidationError{Field: "task_id", Message: "Task is required"})
	}
	errs = append(errs, timesheet.ValidateHours(f.hours)...)
	if validator.IsEmpty(f.timeCategory) {
		errs = append(errs, validator.ValidationError{Field: "time_category", Message: "Time category is required"})
	}
	if validator.IsEmpty(f.resourcePlan) {
		errs = append(errs, validator.ValidationError{Field: "resource_plan", Message: "Resource plan is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Submit validates and then creates or updates the entry. The returned entry
// can be passed to EntryList.Upsert. On failure the form keeps its state.
func (f *EntryForm) Submit(ctx context.Context) (timesheet.Entry, error) {
	f.mu.Lock()
	if err := f.validate(); err != nil {
		f.mu.Unlock()
		return timesheet.Entry{}, err
	}
	id := f.id
	var comments *string
	if c := strings.TrimSpace(f.comments); c != "" {
		comments = &c
	}
	week := f.week.ISO()
	fields := timesheet.CreateEntryRequest{
		ProjectID:    f.projectID,
		TaskID:       f.taskID,
		WeekStart:    week,
		HoursByDay:   f.hours.Normalize(),
		TimeCategory: f.timeCategory,
		ResourcePlan: f.resourcePlan,
		Comments:     comments,
	}
	f.mu.Unlock()

	var saved timesheet.Entry
	var err error
	if id == "" {
		saved, err = f.api.CreateEntry(ctx, fields)
	} else {
		saved, err = f.api.UpdateEntry(ctx, timesheet.UpdateEntryRequest{
			ID:           id,
			ProjectID:    fields.ProjectID,
			TaskID:       fields.TaskID,
			WeekStart:    fields.WeekStart,
			HoursByDay:   fields.HoursByDay,
			TimeCategory: fields.TimeCategory,
			ResourcePlan: fields.ResourcePlan,
			Comments:     fields.Comments,
		})
	}
	if err != nil {
		return timesheet.Entry{}, err
	}

	f.mu.Lock()
	f.id = saved.ID
	f.mu.Unlock()
	return saved, nil
}
