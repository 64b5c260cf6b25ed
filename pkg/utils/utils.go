package utils

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used at every boundary.
const DateLayout = "2006-01-02"

// CalculateDueDate advances startDate by the given number of calendar months.
// When the target month is shorter than the start day the result is clamped
// to the last day of that month, so Jan 31 + 1 month is Feb 28/29, never Mar 2.
func CalculateDueDate(startDate time.Time, months int) time.Time {
	y, m, d := startDate.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, startDate.Location())
	lastDay := DaysInMonth(firstOfTarget)
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, startDate.Location())
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// DaysUntil returns the whole days from now until dueDate, rounded up.
// Past due dates give negative values.
func DaysUntil(dueDate, now time.Time) int {
	days := dueDate.Sub(now).Hours() / 24
	return int(math.Ceil(days))
}

// IsDateOverdue reports whether dueDate falls on an earlier day than now.
func IsDateOverdue(dueDate, now time.Time) bool {
	return DaysUntil(dueDate, now) < 0
}

// TruncateToDate drops the time-of-day and normalizes to UTC.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// RoundToUnit rounds to the nearest whole currency unit, half away from zero.
func RoundToUnit(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// Percent returns part/whole*100, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100))
}
