// Package export projects timesheet entries into flat tables and renders them
// as spreadsheets or paginated documents.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
)

// Placeholder fills every empty cell so columns stay aligned.
const Placeholder = "N/A"

const timestampLayout = "2006-01-02 15:04"

// Column indexes of a row produced by Rows.
const (
	ColID = iota
	ColEmployee
	ColManager
	ColProject
	ColTask
	ColTimeCategory
	ColResourcePlan
	ColWeek
	ColStatus
	ColMon
	ColTue
	ColWed
	ColThu
	ColFri
	ColSat
	ColSun
	ColTotalHours
	ColSubmittedAt
	ColComments
	ColRejectionReason
	columnCount
)

// Columns are the header labels, index-aligned with the Col constants.
var Columns = [columnCount]string{
	ColID:              "ID",
	ColEmployee:        "Employee",
	ColManager:         "Manager",
	ColProject:         "Project",
	ColTask:            "Task",
	ColTimeCategory:    "Time Category",
	ColResourcePlan:    "Resource Plan",
	ColWeek:            "Week",
	ColStatus:          "Status",
	ColMon:             "Mon",
	ColTue:             "Tue",
	ColWed:             "Wed",
	ColThu:             "Thu",
	ColFri:             "Fri",
	ColSat:             "Sat",
	ColSun:             "Sun",
	ColTotalHours:      "Total Hours",
	ColSubmittedAt:     "Submitted At",
	ColComments:        "Comments",
	ColRejectionReason: "Rejection Reason",
}

// Header returns the header labels as a slice.
func Header() []string {
	return append([]string(nil), Columns[:]...)
}

// Rows projects entries into one row per entry. Entries are not modified.
func Rows(entries []timesheet.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row(e))
	}
	return rows
}

// Row projects a single entry.
func Row(e timesheet.Entry) []string {
	row := make([]string, columnCount)
	row[ColID] = text(e.ID)
	row[ColEmployee] = text(e.EmployeeName)
	row[ColManager] = textPtr(e.ManagerName)
	row[ColProject] = text(e.ProjectName)
	row[ColTask] = text(e.TaskName)
	row[ColTimeCategory] = text(e.TimeCategory)
	row[ColResourcePlan] = text(e.ResourcePlan)
	if e.WeekStart.IsZero() {
		row[ColWeek] = Placeholder
	} else {
		row[ColWeek] = e.Week().String()
	}
	row[ColStatus] = text(string(e.Status))
	for i, h := range e.HoursByDay {
		row[ColMon+i] = h.StringFixed(2)
	}
	row[ColTotalHours] = e.TotalHours().StringFixed(2)
	if e.SubmittedAt != nil {
		row[ColSubmittedAt] = e.SubmittedAt.UTC().Format(timestampLayout)
	} else {
		row[ColSubmittedAt] = Placeholder
	}
	row[ColComments] = textPtr(e.Comments)
	row[ColRejectionReason] = textPtr(e.RejectionReason)
	return row
}

func text(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

func textPtr(s *string) string {
	if s == nil {
		return Placeholder
	}
	return text(*s)
}

// Format is an output file type.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts "xlsx" or "pdf" in any case; empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatXLSX, nil
	case FormatXLSX, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filter is the active filter set an export was taken with. Empty fields mean
// "all". Names are preferred over ids when naming files.
type Filter struct {
	Status      string
	ProjectID   string
	ProjectName string
	ManagerID   string
	ManagerName string
	From        *time.Time
	To          *time.Time
}

// Title is a human readable summary used in document headers.
func (f Filter) Title() string {
	parts := []string{"Timesheets"}
	if f.Status != "" {
		parts = append(parts, strings.ToUpper(f.Status))
	}
	if p := firstNonEmpty(f.ProjectName, f.ProjectID); p != "" {
		parts = append(parts, "Project "+p)
	}
	if m := firstNonEmpty(f.ManagerName, f.ManagerID); m != "" {
		parts = append(parts, "Manager "+m)
	}
	if r := f.dateRange(" to ", " "); r != "" {
		parts = append(parts, r)
	}
	return strings.Join(parts, " | ")
}

// BaseName derives a file name without timestamp or extension. Identical filters
// always give identical names.
func BaseName(f Filter) string {
	parts := []string{"timesheets"}
	if f.Status != "" {
		parts = append(parts, slug(f.Status))
	} else {
		parts = append(parts, "all-statuses")
	}
	if p := firstNonEmpty(f.ProjectName, f.ProjectID); p != "" {
		parts = append(parts, "project-"+slug(p))
	} else {
		parts = append(parts, "all-projects")
	}
	if m := firstNonEmpty(f.ManagerName, f.ManagerID); m != "" {
		parts = append(parts, "manager-"+slug(m))
	}
	if r := f.dateRange("_to_", "_"); r != "" {
		parts = append(parts, r)
	}
	return strings.Join(parts, "_")
}

// FileName appends a UTC timestamp and the format extension to BaseName.
func FileName(f Filter, format Format, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", BaseName(f), at.UTC().Format("20060102-150405"), format)
}

func (f Filter) dateRange(sep, space string) string {
	switch {
	case f.From != nil && f.To != nil:
		return f.From.Format(timesheet.DateLayout) + sep + f.To.Format(timesheet.DateLayout)
	case f.From != nil:
		return "from" + space + f.From.Format(timesheet.DateLayout)
	case f.To != nil:
		return "until" + space + f.To.Format(timesheet.DateLayout)
	}
	return ""
}

// slug lowercases s and collapses runs of non-alphanumerics into one hyphen.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
