package timesheet

import (
	"time"
)

const DateLayout = "2006-01-02"

var dayLabels = [DaysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DayLabel returns the short label for a day index, Monday = 0.
func DayLabel(i int) string {
	if i < 0 || i >= DaysPerWeek {
		return ""
	}
	return dayLabels[i]
}

// Day is one calendar day of a week window.
type Day struct {
	Label     string
	Date      time.Time
	IsWeekend bool
}

// ISO returns the date formatted for query strings.
func (d Day) ISO() string {
	return d.Date.Format(DateLayout)
}

// Week is a Monday-to-Sunday window.
type Week struct {
	Start time.Time
}

// WeekOf returns the Monday-aligned week containing t. Only the calendar date of t
// is used.
func WeekOf(t time.Time) Week {
	d := dateOnly(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return Week{Start: d.AddDate(0, 0, -offset)}
}

// ParseWeekStart parses an ISO date and aligns it to its week's Monday.
func ParseWeekStart(iso string) (Week, error) {
	t, err := time.Parse(DateLayout, iso)
	if err != nil {
		return Week{}, ErrInvalidWeekStart
	}
	return WeekOf(t), nil
}

// End is the Sunday of the week.
func (w Week) End() time.Time {
	return w.Start.AddDate(0, 0, DaysPerWeek-1)
}

// Days lists the seven days of the week.
func (w Week) Days() []Day {
	days := make([]Day, DaysPerWeek)
	for i := range days {
		date := w.Start.AddDate(0, 0, i)
		days[i] = Day{
			Label:     dayLabels[i],
			Date:      date,
			IsWeekend: date.Weekday() == time.Saturday || date.Weekday() == time.Sunday,
		}
	}
	return days
}

// Contains reports whether t falls inside the week.
func (w Week) Contains(t time.Time) bool {
	d := dateOnly(t)
	return !d.Before(w.Start) && !d.After(w.End())
}

func (w Week) Equal(o Week) bool {
	return w.Start.Equal(o.Start)
}

// ISO is the Monday's date, the form used for week_start parameters.
func (w Week) ISO() string {
	return w.Start.Format(DateLayout)
}

// String renders the range as "2024-01-01 - 2024-01-07".
func (w Week) String() string {
	return w.Start.Format(DateLayout) + " - " + w.End().Format(DateLayout)
}

// WeekCursor navigates whole weeks from an anchor date.
type WeekCursor struct {
	anchor time.Time
}

func NewWeekCursor(anchor time.Time) WeekCursor {
	return WeekCursor{anchor: dateOnly(anchor)}
}

func (c WeekCursor) Anchor() time.Time {
	return c.anchor
}

func (c WeekCursor) Week() Week {
	return WeekOf(c.anchor)
}

// Shift moves the anchor by direction*7 days. Only -1 and +1 are accepted.
func (c WeekCursor) Shift(direction int) (WeekCursor, error) {
	if direction != -1 && direction != 1 {
		return c, ErrInvalidShiftDirection
	}
	return WeekCursor{anchor: c.anchor.AddDate(0, 0, direction*DaysPerWeek)}, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
