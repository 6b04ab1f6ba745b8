package client

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/validator"
)

// ErrSuperseded is returned by a load whose response arrived after a newer load
// was started. The response is discarded.
var ErrSuperseded = errors.New("response superseded by a newer request")

// LoadReason names the event that triggered a fetch.
type LoadReason string

const (
	ReasonInitial       LoadReason = "initial"
	ReasonWeekShifted   LoadReason = "week_shifted"
	ReasonFilterChanged LoadReason = "filter_changed"
	ReasonManualRefresh LoadReason = "manual_refresh"
	ReasonReconcile     LoadReason = "reconcile"
)

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message about the last mutation.
type Notice struct {
	Kind    NoticeKind
	Message string
	At      time.Time
}

// EntryAPI is the part of the REST client the list uses.
type EntryAPI interface {
	ListMyEntries(ctx context.Context, week timesheet.Week) ([]timesheet.Entry, error)
	ListAllEntries(ctx context.Context, q Query) ([]timesheet.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	SubmitEntry(ctx context.Context, id string) (timesheet.Entry, error)
	SubmitAllDrafts(ctx context.Context, week *timesheet.Week) ([]timesheet.Entry, error)
}

// EntryList holds the entries of the displayed week. It is a read-through,
// write-through cache of that week only.
type EntryList struct {
	api         EntryAPI
	perspective timesheet.Perspective
	now         func() time.Time

	mu      sync.Mutex
	cursor  timesheet.WeekCursor
	filter  timesheet.Filter
	query   Query
	entries []timesheet.Entry
	loaded  bool
	seq     uint64
	loading bool
	notice  *Notice
}

// NewEntryList starts on the week containing anchor. The approver perspective
// lists every employee's entries.
func NewEntryList(api EntryAPI, perspective timesheet.Perspective, anchor time.Time) *EntryList {
	return &EntryList{
		api:         api,
		perspective: perspective,
		now:         time.Now,
		cursor:      timesheet.NewWeekCursor(anchor),
		filter:      timesheet.NewFilter(),
	}
}

// ListView is a snapshot for rendering.
type ListView struct {
	Week      timesheet.Week
	Filter    timesheet.Filter
	Selection timesheet.Selection
	Actions   map[string]timesheet.ActionSet
	Counts    map[timesheet.Status]int
	Loading   bool
	Loaded    bool
	// CanSubmitAll is true when the displayed week has at least one draft.
	CanSubmitAll bool
}

func (l *EntryList) View() ListView {
	l.mu.Lock()
	defer l.mu.Unlock()

	sel := timesheet.Select(l.entries, l.filter)
	actions := make(map[string]timesheet.ActionSet, len(sel.Rows))
	for _, e := range sel.Rows {
		actions[e.ID] = timesheet.AvailableActions(e, l.perspective)
	}
	counts := timesheet.CountByStatus(l.entries)

	return ListView{
		Week:         l.cursor.Week(),
		Filter:       l.filter,
		Selection:    sel,
		Actions:      actions,
		Counts:       counts,
		Loading:      l.loading,
		Loaded:       l.loaded,
		CanSubmitAll: l.perspective == timesheet.PerspectiveOwner && counts[timesheet.StatusDraft] > 0,
	}
}

func (l *EntryList) Week() timesheet.Week {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor.Week()
}

// Entry returns a row of the displayed week by id.
func (l *EntryList) Entry(id string) (timesheet.Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(id)
	if i < 0 {
		return timesheet.Entry{}, false
	}
	return l.entries[i], true
}

// TakeNotice returns the pending notice and clears it.
func (l *EntryList) TakeNotice() *Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := l.notice
	l.notice = nil
	return n
}

// Load fetches the current week. A response for a superseded request, or for a
// week that is no longer displayed, is dropped with ErrSuperseded.
func (l *EntryList) Load(ctx context.Context, reason LoadReason) error {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	week := l.cursor.Week()
	q := l.query
	q.WeekStart = week.ISO()
	l.loading = true
	l.mu.Unlock()

	var entries []timesheet.Entry
	var err error
	if l.perspective == timesheet.PerspectiveApprover {
		entries, err = l.api.ListAllEntries(ctx, q)
	} else {
		entries, err = l.api.ListMyEntries(ctx, week)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq || !week.Equal(l.cursor.Week()) {
		return ErrSuperseded
	}
	l.loading = false
	if err != nil {
		l.setFailure(err)
		return err
	}
	l.entries = entries
	l.loaded = true
	if reason == ReasonManualRefresh {
		l.setNotice(NoticeSuccess, "Timesheet refreshed")
	}
	return nil
}

// Shift moves the displayed week by one in direction (-1 or +1) and reloads.
func (l *EntryList) Shift(ctx context.Context, direction int) error {
	l.mu.Lock()
	next, err := l.cursor.Shift(direction)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	l.cursor = next
	l.mu.Unlock()

	return l.Load(ctx, ReasonWeekShifted)
}

// SetQuery changes the server-side filters of the approver view and reloads.
func (l *EntryList) SetQuery(ctx context.Context, q Query) error {
	l.mu.Lock()
	l.query = q
	l.filter = l.filter.WithPage(0)
	l.mu.Unlock()

	return l.Load(ctx, ReasonFilterChanged)
}

// The remaining filter changes only reshape the fetched set.

func (l *EntryList) SetTab(t timesheet.Tab) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filter = l.filter.WithTab(t)
}

func (l *EntryList) SetSearch(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filter = l.filter.WithSearch(s)
}

func (l *EntryList) SetPageSize(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filter = l.filter.WithPageSize(n)
}

func (l *EntryList) SetPage(p int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filter = l.filter.WithPage(p)
}

// Upsert replaces an entry's row wholesale, or adds it when it belongs to the
// displayed week. An entry moved to another week leaves the list.
func (l *EntryList) Upsert(e timesheet.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.upsert(e)
}

func (l *EntryList) upsert(e timesheet.Entry) {
	inWeek := e.Week().Equal(l.cursor.Week())
	i := l.indexOf(e.ID)
	switch {
	case i >= 0 && inWeek:
		l.entries[i] = e
	case i >= 0:
		l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
	case inWeek:
		l.entries = append(l.entries, e)
	}
}

func (l *EntryList) indexOf(id string) int {
	for i, e := range l.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Delete removes an entry on the server and then its row.
func (l *EntryList) Delete(ctx context.Context, id string) error {
	e, ok := l.Entry(id)
	if !ok {
		return l.fail(ctx, ErrNoEntryLoaded)
	}
	if !timesheet.AvailableActions(e, l.perspective).Has(timesheet.ActionDelete) {
		return l.fail(ctx, timesheet.ErrEntryNotDeletable)
	}

	if err := l.api.DeleteEntry(ctx, id); err != nil {
		return l.fail(ctx, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(id); i >= 0 {
		l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
	}
	l.setNotice(NoticeSuccess, "Timesheet entry deleted")
	return nil
}

// Submit moves a DRAFT or REJECTED entry to SUBMITTED. Entries with no hours
// are refused locally.
func (l *EntryList) Submit(ctx context.Context, id string) (timesheet.Entry, error) {
	e, ok := l.Entry(id)
	if !ok {
		return timesheet.Entry{}, l.fail(ctx, ErrNoEntryLoaded)
	}
	if !timesheet.CanTransition(e.Status, timesheet.StatusSubmitted) {
		return timesheet.Entry{}, l.fail(ctx, timesheet.ErrInvalidTransition)
	}
	if !e.HoursByDay.HasPositive() {
		return timesheet.Entry{}, l.fail(ctx, validator.ValidationErrors{{
			Field:   "hours_by_day",
			Message: timesheet.ErrNoHoursLogged.Error(),
		}})
	}

	updated, err := l.api.SubmitEntry(ctx, id)
	if err != nil {
		return timesheet.Entry{}, l.fail(ctx, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.upsert(updated)
	l.setNotice(NoticeSuccess, "Timesheet entry submitted")
	return updated, nil
}

// SubmitAll submits every draft of the displayed week in one request.
func (l *EntryList) SubmitAll(ctx context.Context) ([]timesheet.Entry, error) {
	l.mu.Lock()
	week := l.cursor.Week()
	drafts := timesheet.CountByStatus(l.entries)[timesheet.StatusDraft]
	l.mu.Unlock()

	if drafts == 0 {
		return nil, l.fail(ctx, ErrNoDrafts)
	}

	submitted, err := l.api.SubmitAllDrafts(ctx, &week)
	if err != nil {
		return nil, l.fail(ctx, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range submitted {
		l.upsert(e)
	}
	l.setNotice(NoticeSuccess, pluralEntries(len(submitted))+" submitted")
	return submitted, nil
}

// Confirmed records a mutation made elsewhere, e.g. by the form or the
// approval controller.
func (l *EntryList) Confirmed(e timesheet.Entry, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.upsert(e)
	l.setNotice(NoticeSuccess, message)
}

// fail records a failure notice and, when the row is stale, reloads the week
// to reconcile. err is returned unchanged.
func (l *EntryList) fail(ctx context.Context, err error) error {
	l.mu.Lock()
	l.setFailure(err)
	l.mu.Unlock()

	if IsStale(err) {
		if rerr := l.Load(ctx, ReasonReconcile); rerr != nil && !errors.Is(rerr, ErrSuperseded) {
			return errors.Join(err, rerr)
		}
	}
	return err
}

// setFailure must be called with mu held. A 401 is left to the
// unauthorized hook.
func (l *EntryList) setFailure(err error) {
	if errors.Is(err, ErrUnauthorized) {
		return
	}
	l.setNotice(NoticeError, Message(err))
}

func (l *EntryList) setNotice(kind NoticeKind, msg string) {
	l.notice = &Notice{Kind: kind, Message: msg, At: l.now()}
}

func pluralEntries(n int) string {
	if n == 1 {
		return "1 timesheet entry"
	}
	return strconv.Itoa(n) + " timesheet entries"
}
