package timesheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekOf_AlignsToMonday(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want string
	}{
		{"monday", date(2024, 1, 8), "2024-01-08"},
		{"wednesday afternoon", time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC), "2024-01-08"},
		{"sunday", date(2024, 1, 14), "2024-01-08"},
		{"across a year", date(2024, 1, 3), "2024-01-01"},
		{"across a month", date(2024, 3, 2), "2024-02-26"},
		{"leap day", date(2024, 2, 29), "2024-02-26"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, WeekOf(c.in).ISO())
		})
	}
}

func TestWeek_Days(t *testing.T) {
	w := WeekOf(date(2024, 1, 10))
	days := w.Days()

	require.Len(t, days, DaysPerWeek)
	assert.Equal(t, "Mon", days[0].Label)
	assert.Equal(t, "2024-01-08", days[0].ISO())
	assert.Equal(t, "2024-01-14", days[6].ISO())
	assert.False(t, days[4].IsWeekend)
	assert.True(t, days[5].IsWeekend)
	assert.True(t, days[6].IsWeekend)
	assert.Equal(t, "2024-01-08 - 2024-01-14", w.String())
}

func TestWeek_Contains(t *testing.T) {
	w := WeekOf(date(2024, 1, 8))

	assert.True(t, w.Contains(time.Date(2024, 1, 14, 23, 59, 0, 0, time.UTC)))
	assert.False(t, w.Contains(date(2024, 1, 15)))
	assert.False(t, w.Contains(date(2024, 1, 7)))
}

func TestParseWeekStart(t *testing.T) {
	w, err := ParseWeekStart("2024-01-11")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", w.ISO())

	_, err = ParseWeekStart("11/01/2024")
	assert.ErrorIs(t, err, ErrInvalidWeekStart)
}

func TestWeekCursor_Shift(t *testing.T) {
	c := NewWeekCursor(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-01-08", c.Week().ISO())

	next, err := c.Shift(1)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", next.Week().ISO())
	assert.Equal(t, date(2024, 1, 17), next.Anchor())

	back, err := next.Shift(-1)
	require.NoError(t, err)
	assert.True(t, back.Week().Equal(c.Week()))

	for _, dir := range []int{0, 2, -7} {
		same, err := c.Shift(dir)
		assert.ErrorIs(t, err, ErrInvalidShiftDirection)
		assert.Equal(t, c, same)
	}
}

func TestWeekCursor_YearBoundary(t *testing.T) {
	c := NewWeekCursor(date(2023, 12, 29))
	assert.Equal(t, "2023-12-25", c.Week().ISO())

	next, err := c.Shift(1)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", next.Week().ISO())
}
