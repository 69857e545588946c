package core

import (
	"fmt"
	"time"
)

// Period is the inclusive date range of one budget month, at day granularity.
type Period struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// DaysInMonth returns the number of days in a calendar month.
func DaysInMonth(year, month int) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ResolvePeriod converts (year, month, cycle start day) into the concrete
// date range of that budget month. The start day is clamped to the last day
// of each calendar month it lands in, so every month has exactly one
// well-defined start regardless of day count or leap years. The end is the
// day before the next month's (clamped) start, which keeps consecutive
// periods contiguous. Pure and idempotent.
func ResolvePeriod(year, month, cycleStartDay int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}
	if cycleStartDay < 1 {
		cycleStartDay = 1
	}
	if cycleStartDay > 31 {
		cycleStartDay = 31
	}

	start := NewDate(year, month, clampDay(year, month, cycleStartDay))

	nextYear, nextMonth := year, month+1
	if nextMonth > 12 {
		nextYear, nextMonth = year+1, 1
	}
	end := NewDate(nextYear, nextMonth, clampDay(nextYear, nextMonth, cycleStartDay)).AddDays(-1)

	return Period{Start: start, End: end}, nil
}

// ResolvePeriodKey resolves the period of a budget month identified by key.
func ResolvePeriodKey(key MonthKey, cycleStartDay int) (Period, error) {
	year, month, err := key.Split()
	if err != nil {
		return Period{}, err
	}
	return ResolvePeriod(year, month, cycleStartDay)
}

// Contains reports whether d falls inside the period, boundaries included.
func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start.Time) && !d.After(p.End.Time)
}

// BudgetMonthOf resolves the budget month whose period contains d. A date
// before its calendar month's cycle start belongs to the previous budget
// month.
func BudgetMonthOf(d Date, cycleStartDay int) MonthKey {
	key := MonthKeyFor(d.Year(), d.Month())
	p, err := ResolvePeriodKey(key, cycleStartDay)
	if err != nil {
		return key
	}
	if d.Before(p.Start.Time) {
		return key.Prev()
	}
	return key
}

func clampDay(year, month, day int) int {
	if last := DaysInMonth(year, month); day > last {
		return last
	}
	return day
}
