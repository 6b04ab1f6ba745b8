package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/cmlabs-hris/timesheet-go/internal/client"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/validator"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	weekendStyle = cellStyle.Foreground(lipgloss.Color("240"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	statusColors = map[timesheet.Status]lipgloss.Color{
		timesheet.StatusDraft:     lipgloss.Color("250"),
		timesheet.StatusSubmitted: lipgloss.Color("39"),
		timesheet.StatusApproved:  lipgloss.Color("42"),
		timesheet.StatusRejected:  lipgloss.Color("196"),
	}
)

// renderWeek prints the week window with one column per day.
func renderWeek(w timesheet.Week) string {
	days := w.Days()
	headers := make([]string, len(days))
	dates := make([]string, len(days))
	for i, d := range days {
		headers[i] = d.Label
		dates[i] = d.Date.Format("02 Jan")
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Row(dates...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if days[col].IsWeekend {
				return weekendStyle
			}
			return cellStyle
		})
	return titleStyle.Render("Week "+w.String()) + "\n" + t.String()
}

func entryColumns(approver bool) []string {
	cols := []string{"ID", "Project", "Task"}
	if approver {
		cols = append([]string{"ID", "Employee"}, cols[1:]...)
	}
	for i := 0; i < timesheet.DaysPerWeek; i++ {
		cols = append(cols, timesheet.DayLabel(i))
	}
	return append(cols, "Total", "Status", "Actions")
}

func entryRow(e timesheet.Entry, actions timesheet.ActionSet, approver bool) []string {
	row := []string{e.ID}
	if approver {
		row = append(row, e.EmployeeName)
	}
	row = append(row, e.ProjectName, e.TaskName)
	for _, h := range e.HoursByDay {
		row = append(row, formatHours(h.String()))
	}
	row = append(row, e.TotalHours().String(), string(e.Status))

	names := make([]string, 0, len(actions))
	for _, a := range actions.Sorted() {
		names = append(names, string(a))
	}
	return append(row, strings.Join(names, ","))
}

// renderList prints the visible page of v with a status summary.
func renderList(v client.ListView, approver bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Week "+v.Week.String()) + "\n")

	if len(v.Selection.Rows) == 0 {
		b.WriteString(mutedStyle.Render("No timesheet entries") + "\n")
		b.WriteString(renderCounts(v.Counts))
		return b.String()
	}

	cols := entryColumns(approver)
	statusCol := len(cols) - 2
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(cols...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == statusCol && row >= 0 && row < len(v.Selection.Rows) {
				return cellStyle.Foreground(statusColors[v.Selection.Rows[row].Status])
			}
			return cellStyle
		})
	for _, e := range v.Selection.Rows {
		t.Row(entryRow(e, v.Actions[e.ID], approver)...)
	}
	b.WriteString(t.String() + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Page %d of %d, %d matching", v.Selection.Page+1, max(v.Selection.PageCount, 1), v.Selection.Total())) + "\n")
	b.WriteString(renderCounts(v.Counts))
	return b.String()
}

func renderCounts(counts map[timesheet.Status]int) string {
	parts := make([]string, 0, 4)
	for _, s := range timesheet.AllStatuses() {
		parts = append(parts, lipgloss.NewStyle().Foreground(statusColors[s]).Render(fmt.Sprintf("%s %d", s, counts[s])))
	}
	return strings.Join(parts, "  ") + "\n"
}

func renderEntry(e timesheet.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", titleStyle.Render(e.ProjectName+" / "+e.TaskName), lipgloss.NewStyle().Foreground(statusColors[e.Status]).Render(string(e.Status)))
	fmt.Fprintf(&b, "id        %s\n", e.ID)
	fmt.Fprintf(&b, "week      %s\n", e.Week())
	if e.EmployeeName != "" {
		fmt.Fprintf(&b, "employee  %s\n", e.EmployeeName)
	}
	fmt.Fprintf(&b, "category  %s\n", e.TimeCategory)
	fmt.Fprintf(&b, "plan      %s\n", e.ResourcePlan)
	hours := make([]string, 0, timesheet.DaysPerWeek)
	for i, h := range e.HoursByDay {
		hours = append(hours, timesheet.DayLabel(i)+" "+formatHours(h.String()))
	}
	fmt.Fprintf(&b, "hours     %s (total %s)\n", strings.Join(hours, "  "), e.TotalHours())
	if e.Comments != nil {
		fmt.Fprintf(&b, "comments  %s\n", *e.Comments)
	}
	if e.RejectionReason != nil {
		fmt.Fprintf(&b, "%s\n", errorStyle.Render("rejected: "+*e.RejectionReason))
	}
	return b.String()
}

func renderNotice(n client.Notice) string {
	if n.Kind == client.NoticeError {
		return errorStyle.Render(n.Message)
	}
	return successStyle.Render(n.Message)
}

// RenderError turns err into terminal text, listing field errors one per line.
func RenderError(err error) string {
	var fields validator.ValidationErrors
	var apiErr *client.APIError
	switch {
	case errors.As(err, &fields):
	case errors.As(err, &apiErr):
		fields = apiErr.Fields()
	}
	if len(fields) == 0 {
		return errorStyle.Render(client.Message(err))
	}
	var b strings.Builder
	b.WriteString(errorStyle.Render("Please fix the following:"))
	for _, f := range fields {
		fmt.Fprintf(&b, "\n  %s: %s", f.Field, f.Message)
	}
	return b.String()
}

func formatHours(s string) string {
	if s == "0" {
		return "-"
	}
	return s
}
