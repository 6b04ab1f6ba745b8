package timesheet

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseHours(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "0"},
		{"  8 ", "8"},
		{"7.5", "7.5"},
		{"7.1", "7"},
		{"7.9", "8"},
		{"0.13", "0.25"},
		{"-3", "0"},
		{"36", "24"},
		{"eight", "0"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assert.Equal(t, c.want, ParseHours(c.in).String())
		})
	}
}

func TestHoursByDay_TotalAndPositive(t *testing.T) {
	h := HoursFromFloats(8, 7.5, 0, 0, 4)

	assert.Equal(t, "19.5", h.Total().String())
	assert.True(t, h.HasPositive())
	assert.False(t, HoursByDay{}.HasPositive())
	assert.True(t, HoursByDay{}.Total().IsZero())
}

func TestHoursByDay_OutOfRange(t *testing.T) {
	var h HoursByDay
	h[1] = decimal.NewFromInt(-1)
	h[3] = decimal.NewFromFloat(24.5)
	h[6] = decimal.NewFromInt(24)

	assert.Equal(t, []int{1, 3}, h.OutOfRange())
	assert.Empty(t, h.Normalize().OutOfRange())
}

func TestValidateHours(t *testing.T) {
	errs := ValidateHours(HoursByDay{})
	assert.True(t, errs.Has("hours_by_day"))

	var h HoursByDay
	h[0] = decimal.NewFromInt(30)
	errs = ValidateHours(h)
	assert.True(t, errs.Has("hours_by_day.mon"))
	assert.False(t, errs.Has("hours_by_day"))
}
