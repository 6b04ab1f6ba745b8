package timesheet

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DaysPerWeek is the number of hour cells on an entry, Monday through Sunday.
const DaysPerWeek = 7

var (
	MinDayHours = decimal.Zero
	MaxDayHours = decimal.NewFromInt(24)

	quarters = decimal.NewFromInt(4)
)

// HoursByDay holds the logged hours for Monday..Sunday.
type HoursByDay [DaysPerWeek]decimal.Decimal

// Quantize rounds x to the nearest quarter hour and clamps it to [0, 24].
func Quantize(x decimal.Decimal) decimal.Decimal {
	q := x.Mul(quarters).Round(0).Div(quarters)
	if q.LessThan(MinDayHours) {
		return MinDayHours
	}
	if q.GreaterThan(MaxDayHours) {
		return MaxDayHours
	}
	return q
}

// ParseHours turns raw cell input into a quantized value. Anything that is not a
// number is stored as zero.
func ParseHours(input string) decimal.Decimal {
	input = strings.TrimSpace(input)
	if input == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero
	}
	return Quantize(d)
}

// HoursFromFloats builds quantized cells from plain numbers.
func HoursFromFloats(values ...float64) HoursByDay {
	var h HoursByDay
	for i := 0; i < DaysPerWeek && i < len(values); i++ {
		h[i] = Quantize(decimal.NewFromFloat(values[i]))
	}
	return h
}

// Total sums the seven cells.
func (h HoursByDay) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range h {
		total = total.Add(v)
	}
	return total
}

// HasPositive reports whether at least one day carries hours.
func (h HoursByDay) HasPositive() bool {
	for _, v := range h {
		if v.IsPositive() {
			return true
		}
	}
	return false
}

// OutOfRange returns the indexes of cells outside [0, 24].
func (h HoursByDay) OutOfRange() []int {
	var idx []int
	for i, v := range h {
		if v.LessThan(MinDayHours) || v.GreaterThan(MaxDayHours) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Normalize quantizes every cell.
func (h HoursByDay) Normalize() HoursByDay {
	var out HoursByDay
	for i, v := range h {
		out[i] = Quantize(v)
	}
	return out
}
