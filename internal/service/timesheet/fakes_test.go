package timesheet

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/notification"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/project"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/google/uuid"
)

// memEntries is an in-memory EntryRepository. Transactions are emulated by
// snapshotting the map and restoring it on error.
type memEntries struct {
	mu       sync.Mutex
	entries  map[string]timesheet.Entry
	projects *memProjects
	people   map[string]person
	// failUpdateStatusAfter makes the n-th UpdateStatus call fail when > 0.
	failUpdateStatusAfter int
	updateStatusCalls     int
}

func newMemEntries(projects *memProjects) *memEntries {
	return &memEntries{entries: map[string]timesheet.Entry{}, projects: projects, people: map[string]person{}}
}

type person struct {
	name   string
	userID string
	email  string
}

func (m *memEntries) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	snapshot := make(map[string]timesheet.Entry, len(m.entries))
	for k, v := range m.entries {
		snapshot[k] = v
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.entries = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memEntries) enrich(e timesheet.Entry) timesheet.Entry {
	if p, ok := m.projects.byID(e.ProjectID); ok {
		e.ProjectName = p.Name
		e.ManagerID = p.ManagerID
		e.ManagerName = p.ManagerName
	}
	if t, ok := m.projects.taskByID(e.TaskID); ok {
		e.TaskName = t.Name
	}
	if p, ok := m.people[e.EmployeeID]; ok {
		e.EmployeeName, e.OwnerUserID, e.OwnerEmail = p.name, p.userID, p.email
	}
	return e.WithWeek(e.WeekStart)
}

func (m *memEntries) Create(_ context.Context, e timesheet.Entry) (timesheet.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now()
	e.Status = timesheet.StatusDraft
	e.CreatedAt, e.UpdatedAt = now, now
	e = m.enrich(e)
	m.entries[e.ID] = e
	return e, nil
}

func (m *memEntries) GetByID(_ context.Context, id string) (timesheet.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return timesheet.Entry{}, timesheet.ErrEntryNotFound
	}
	return e, nil
}

func (m *memEntries) LockByID(ctx context.Context, id string) (timesheet.Entry, error) {
	return m.GetByID(ctx, id)
}

func (m *memEntries) List(_ context.Context, f timesheet.ListFilter) ([]timesheet.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	from, to := f.Range()
	var out []timesheet.Entry
	for _, e := range m.entries {
		if f.EmployeeID != nil && e.EmployeeID != *f.EmployeeID {
			continue
		}
		if from != nil && e.WeekEnd.Before(*from) {
			continue
		}
		if to != nil && e.WeekStart.After(*to) {
			continue
		}
		if f.Status != nil {
			if s, _ := timesheet.ParseStatus(*f.Status); e.Status != s {
				continue
			}
		}
		if f.ProjectID != nil && e.ProjectID != *f.ProjectID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memEntries) Update(_ context.Context, e timesheet.Entry) (timesheet.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[e.ID]; !ok {
		return timesheet.Entry{}, timesheet.ErrEntryNotFound
	}
	e.UpdatedAt = time.Now()
	e = m.enrich(e)
	m.entries[e.ID] = e
	return e, nil
}

func (m *memEntries) UpdateStatus(_ context.Context, e timesheet.Entry) (timesheet.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateStatusCalls++
	if m.failUpdateStatusAfter > 0 && m.updateStatusCalls >= m.failUpdateStatusAfter {
		return timesheet.Entry{}, errStorage
	}
	cur, ok := m.entries[e.ID]
	if !ok {
		return timesheet.Entry{}, timesheet.ErrEntryNotFound
	}
	cur.Status = e.Status
	cur.RejectionReason = e.RejectionReason
	cur.SubmittedAt = e.SubmittedAt
	cur.UpdatedAt = time.Now()
	m.entries[e.ID] = cur
	return cur, nil
}

func (m *memEntries) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return timesheet.ErrEntryNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *memEntries) ListDrafts(_ context.Context, employeeID string, weekStart *time.Time) ([]timesheet.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []timesheet.Entry
	for _, e := range m.entries {
		if e.EmployeeID != employeeID || e.Status != timesheet.StatusDraft {
			continue
		}
		if weekStart != nil && !e.WeekStart.Equal(timesheet.WeekOf(*weekStart).Start) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memEntries) ListDraftOwners(_ context.Context, weekStart time.Time) ([]timesheet.DraftOwner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]*timesheet.DraftOwner{}
	start := timesheet.WeekOf(weekStart).Start
	for _, e := range m.entries {
		if e.Status != timesheet.StatusDraft || !e.WeekStart.Equal(start) {
			continue
		}
		o, ok := counts[e.EmployeeID]
		if !ok {
			o = &timesheet.DraftOwner{EmployeeID: e.EmployeeID, EmployeeName: e.EmployeeName, UserID: e.OwnerUserID, Email: e.OwnerEmail}
			counts[e.EmployeeID] = o
		}
		o.DraftCount++
	}
	var out []timesheet.DraftOwner
	for _, o := range counts {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

type memProjects struct {
	projects []project.Project
	tasks    []project.Task
	members  map[string][]string
	managers map[string]project.Manager
}

func (m *memProjects) byID(id string) (project.Project, bool) {
	for _, p := range m.projects {
		if p.ID == id {
			return p, true
		}
	}
	return project.Project{}, false
}

func (m *memProjects) taskByID(id string) (project.Task, bool) {
	for _, t := range m.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return project.Task{}, false
}

func (m *memProjects) ListAll(context.Context) ([]project.Project, error) { return m.projects, nil }

func (m *memProjects) ListByMember(_ context.Context, employeeID string) ([]project.Project, error) {
	var out []project.Project
	for _, p := range m.projects {
		if ok, _ := m.IsMember(context.Background(), p.ID, employeeID); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProjects) GetByID(_ context.Context, id string) (project.Project, error) {
	p, ok := m.byID(id)
	if !ok {
		return project.Project{}, project.ErrProjectNotFound
	}
	return p, nil
}

func (m *memProjects) IsMember(_ context.Context, projectID, employeeID string) (bool, error) {
	for _, e := range m.members[projectID] {
		if e == employeeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memProjects) ListTasks(_ context.Context, projectID string) ([]project.Task, error) {
	var out []project.Task
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memProjects) GetTask(_ context.Context, id string) (project.Task, error) {
	t, ok := m.taskByID(id)
	if !ok {
		return project.Task{}, project.ErrTaskNotFound
	}
	return t, nil
}

func (m *memProjects) GetManager(_ context.Context, projectID string) (project.Manager, error) {
	mgr, ok := m.managers[projectID]
	if !ok {
		return project.Manager{}, project.ErrManagerNotFound
	}
	return mgr, nil
}

// recordingNotifier captures queued notifications. Only the queue methods are used.
type recordingNotifier struct {
	notification.Service
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
}

func (r *recordingNotifier) QueueNotification(_ context.Context, req notification.CreateNotificationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, req)
	return nil
}

func (r *recordingNotifier) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, req := range reqs {
		_ = r.QueueNotification(ctx, req)
	}
	return nil
}

func (r *recordingNotifier) types() []notification.NotificationType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notification.NotificationType, len(r.sent))
	for i, s := range r.sent {
		out[i] = s.Type
	}
	return out
}
