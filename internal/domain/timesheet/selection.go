package timesheet

import (
	"strings"
)

// Tab groups the list by status. TabAll shows every status.
type Tab string

const TabAll Tab = "ALL"

// ParseTab accepts "ALL" or any status name.
func ParseTab(s string) (Tab, bool) {
	if strings.EqualFold(strings.TrimSpace(s), string(TabAll)) || strings.TrimSpace(s) == "" {
		return TabAll, true
	}
	status, ok := ParseStatus(s)
	if !ok {
		return "", false
	}
	return Tab(status), true
}

// Filter is an immutable description of what the list shows. Every With* method
// that changes which rows match puts the page back to 0.
type Filter struct {
	Tab      Tab
	Search   string
	Page     int
	PageSize int
}

func NewFilter() Filter {
	return Filter{Tab: TabAll, PageSize: DefaultPageSize}
}

func (f Filter) WithTab(t Tab) Filter {
	if t == "" {
		t = TabAll
	}
	if t != f.Tab {
		f.Page = 0
	}
	f.Tab = t
	return f
}

func (f Filter) WithSearch(s string) Filter {
	if s != f.Search {
		f.Page = 0
	}
	f.Search = s
	return f
}

// WithPageSize only accepts sizes from PageSizeOptions.
func (f Filter) WithPageSize(n int) Filter {
	for _, opt := range PageSizeOptions {
		if opt == n {
			if n != f.PageSize {
				f.Page = 0
			}
			f.PageSize = n
			return f
		}
	}
	return f
}

func (f Filter) WithPage(p int) Filter {
	if p < 0 {
		p = 0
	}
	f.Page = p
	return f
}

// Matches applies the tab filter and then the search term.
func (f Filter) Matches(e Entry) bool {
	if f.Tab != TabAll && f.Tab != "" && string(e.Status) != string(f.Tab) {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	fields := []string{e.TaskName, e.ProjectName, e.TimeCategory, e.ResourcePlan, string(e.Status)}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Selection is the visible slice of a fetched set.
type Selection struct {
	Rows      []Entry
	Matched   []Entry
	Page      int
	PageSize  int
	PageCount int
}

// Total is the number of rows matching the filter across all pages.
func (s Selection) Total() int {
	return len(s.Matched)
}

// Select derives the displayed rows from the full fetched set. entries is not modified.
func Select(entries []Entry, f Filter) Selection {
	size := f.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	matched := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Matches(e) {
			matched = append(matched, e)
		}
	}

	pageCount := (len(matched) + size - 1) / size
	page := f.Page
	if page >= pageCount {
		page = pageCount - 1
	}
	if page < 0 {
		page = 0
	}

	start := page * size
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	rows := []Entry{}
	if start < end {
		rows = matched[start:end]
	}

	return Selection{
		Rows:      rows,
		Matched:   matched,
		Page:      page,
		PageSize:  size,
		PageCount: pageCount,
	}
}
