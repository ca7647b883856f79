package balance

import (
	"fmt"
	"time"
)

// monthKey formats a (year, month) pair as "YYYY-MM".
func monthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// monthStart returns the first instant of the month at UTC.
func monthStart(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// addMonths shifts a (year, month) pair by delta months, relying on
// time.Date normalization for year rollover.
func addMonths(year, month, delta int) (int, int) {
	t := time.Date(year, time.Month(month+delta), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), int(t.Month())
}

// daysInMonth returns the number of calendar days in the month.
// Day zero of the following month normalizes to this month's last day.
func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// compareYearMonth orders two (year, month) pairs: -1, 0 or 1.
func compareYearMonth(aYear, aMonth, bYear, bMonth int) int {
	if aYear == bYear && aMonth == bMonth {
		return 0
	}
	if aYear < bYear || (aYear == bYear && aMonth < bMonth) {
		return -1
	}
	return 1
}

// validYearMonth rejects out-of-range month inputs.
func validYearMonth(year, month int) bool {
	return year >= 1 && month >= 1 && month <= 12
}
