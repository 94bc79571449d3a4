package util

import "time"

// MonthYear returns the calendar month (1-12) and year a date falls in
func MonthYear(date time.Time) (month, year int) {
	return int(date.Month()), date.Year()
}

// MonthWindow returns the [start, end) interval covering the given
// month, for range queries against transaction dates
func MonthWindow(year, month int) (start, end time.Time) {
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end
}
