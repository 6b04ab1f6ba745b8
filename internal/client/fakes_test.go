package client

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/project"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
)

var (
	mon8  = time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	mon15 = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
)

func entry(id string, week time.Time, status timesheet.Status, hours ...float64) timesheet.Entry {
	if len(hours) == 0 {
		hours = []float64{8}
	}
	return timesheet.Entry{
		ID:           id,
		EmployeeID:   "emp-1",
		ProjectID:    "proj-1",
		ProjectName:  "Apollo",
		TaskID:       "task-1",
		TaskName:     "Backend " + id,
		TimeCategory: "Development",
		ResourcePlan: "None",
		HoursByDay:   timesheet.HoursFromFloats(hours...),
		Status:       status,
	}.WithWeek(week)
}

// fakeAPI serves entries per week. A gated week blocks its list call until the
// gate is closed.
type fakeAPI struct {
	mu      sync.Mutex
	byWeek  map[string][]timesheet.Entry
	gates   map[string]chan struct{}
	started chan string
	queries []Query

	listErr      error
	deleteErr    error
	submitErr    error
	approveErr   error
	deleted      []string
	submitted    []string
	submitAllFor []*timesheet.Week
	approved     []string
	rejected     map[string]string
	approveGate  chan struct{}

	tasks     map[string][]project.TaskResponse
	taskGates map[string]chan struct{}
	taskErr   map[string]error
	created   []timesheet.CreateEntryRequest
	updated   []timesheet.UpdateEntryRequest
	saveErr   error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		byWeek:    map[string][]timesheet.Entry{},
		gates:     map[string]chan struct{}{},
		started:   make(chan string, 16),
		rejected:  map[string]string{},
		tasks:     map[string][]project.TaskResponse{},
		taskGates: map[string]chan struct{}{},
		taskErr:   map[string]error{},
	}
}

func (f *fakeAPI) list(ctx context.Context, week string) ([]timesheet.Entry, error) {
	f.mu.Lock()
	gate := f.gates[week]
	f.mu.Unlock()
	f.started <- week
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]timesheet.Entry(nil), f.byWeek[week]...), nil
}

func (f *fakeAPI) ListMyEntries(ctx context.Context, week timesheet.Week) ([]timesheet.Entry, error) {
	return f.list(ctx, week.ISO())
}

func (f *fakeAPI) ListAllEntries(ctx context.Context, q Query) ([]timesheet.Entry, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.list(ctx, q.WeekStart)
}

func (f *fakeAPI) find(id string) (timesheet.Entry, bool) {
	for _, entries := range f.byWeek {
		for _, e := range entries {
			if e.ID == id {
				return e, true
			}
		}
	}
	return timesheet.Entry{}, false
}

func (f *fakeAPI) DeleteEntry(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) SubmitEntry(_ context.Context, id string) (timesheet.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, id)
	if f.submitErr != nil {
		return timesheet.Entry{}, f.submitErr
	}
	e, _ := f.find(id)
	return e.Submitted(time.Now())
}

func (f *fakeAPI) SubmitAllDrafts(_ context.Context, week *timesheet.Week) ([]timesheet.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitAllFor = append(f.submitAllFor, week)
	var out []timesheet.Entry
	for _, e := range f.byWeek[week.ISO()] {
		if e.Status == timesheet.StatusDraft {
			s, _ := e.Submitted(time.Now())
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeAPI) ApproveEntry(_ context.Context, id string) (timesheet.Entry, error) {
	if f.approveGate != nil {
		<-f.approveGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approved = append(f.approved, id)
	if f.approveErr != nil {
		return timesheet.Entry{}, f.approveErr
	}
	e, _ := f.find(id)
	return e.Approved()
}

func (f *fakeAPI) RejectEntry(_ context.Context, id, reason string) (timesheet.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected[id] = reason
	e, _ := f.find(id)
	return e.Rejected(reason)
}

func (f *fakeAPI) ListTasks(_ context.Context, projectID string) ([]project.TaskResponse, error) {
	f.mu.Lock()
	gate := f.taskGates[projectID]
	f.mu.Unlock()
	f.started <- projectID
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.taskErr[projectID]; err != nil {
		return nil, err
	}
	return f.tasks[projectID], nil
}

func (f *fakeAPI) CreateEntry(_ context.Context, req timesheet.CreateEntryRequest) (timesheet.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	if f.saveErr != nil {
		return timesheet.Entry{}, f.saveErr
	}
	w, _ := timesheet.ParseWeekStart(req.WeekStart)
	return timesheet.Entry{
		ID:           "new-1",
		ProjectID:    req.ProjectID,
		TaskID:       req.TaskID,
		HoursByDay:   req.HoursByDay,
		TimeCategory: req.TimeCategory,
		ResourcePlan: req.ResourcePlan,
		Status:       timesheet.StatusDraft,
	}.WithWeek(w.Start), nil
}

func (f *fakeAPI) UpdateEntry(_ context.Context, req timesheet.UpdateEntryRequest) (timesheet.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, req)
	if f.saveErr != nil {
		return timesheet.Entry{}, f.saveErr
	}
	w, _ := timesheet.ParseWeekStart(req.WeekStart)
	return timesheet.Entry{
		ID:         req.ID,
		ProjectID:  req.ProjectID,
		TaskID:     req.TaskID,
		HoursByDay: req.HoursByDay,
		Status:     timesheet.StatusDraft,
	}.WithWeek(w.Start), nil
}
