package util

import (
	"testing"
	"time"
)

func TestMonthYear(t *testing.T) {
	date := time.Date(2024, time.June, 15, 13, 45, 0, 0, time.UTC)
	month, year := MonthYear(date)
	if month != 6 {
		t.Errorf("expected month 6, got %d", month)
	}
	if year != 2024 {
		t.Errorf("expected year 2024, got %d", year)
	}
}

func TestMonthWindow(t *testing.T) {
	start, end := MonthWindow(2024, 6)

	if !start.Equal(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start: %s", start)
	}
	if !end.Equal(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end: %s", end)
	}
}

func TestMonthWindow_YearRollover(t *testing.T) {
	start, end := MonthWindow(2024, 12)

	if !start.Equal(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start: %s", start)
	}
	if !end.Equal(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end: %s", end)
	}
}

func TestMonthWindow_ContainsWholeMonth(t *testing.T) {
	start, end := MonthWindow(2024, 2)

	inside := time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC)
	if inside.Before(start) || !inside.Before(end) {
		t.Errorf("leap day should fall inside the window")
	}

	outside := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if outside.Before(end) {
		t.Errorf("first of next month should fall outside the window")
	}
}
