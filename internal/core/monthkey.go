package core

import (
	"fmt"
	"strconv"
	"time"
)

// MonthKey identifies a budget month as "YYYY-MM". Lexicographic string
// comparison of keys is valid chronological comparison.
type MonthKey string

// MonthKeyFor builds the key for a calendar year and month.
func MonthKeyFor(year, month int) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", year, month))
}

// MonthKeyOf returns the key for the calendar month containing t.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKeyFor(t.Year(), int(t.Month()))
}

// ParseMonthKey validates and normalizes a "YYYY-MM" string.
func ParseMonthKey(s string) (MonthKey, error) {
	year, month, err := MonthKey(s).Split()
	if err != nil {
		return "", err
	}
	return MonthKeyFor(year, month), nil
}

// Validate reports whether the key is a well-formed "YYYY-MM".
func (k MonthKey) Validate() error {
	_, _, err := k.Split()
	return err
}

// Split returns the key's year and month. Every rune outside the separator
// must be a digit; signs are not month keys.
func (k MonthKey) Split() (year, month int, err error) {
	s := string(k)
	if len(s) != 7 || s[4] != '-' || !allDigits(s[:4]) || !allDigits(s[5:]) {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadMonthKey, s)
	}
	year, _ = strconv.Atoi(s[:4])
	month, _ = strconv.Atoi(s[5:])
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadMonthKey, s)
	}
	return year, month, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Prev returns the key of the preceding calendar month.
func (k MonthKey) Prev() MonthKey {
	year, month, err := k.Split()
	if err != nil {
		return k
	}
	if month == 1 {
		return MonthKeyFor(year-1, 12)
	}
	return MonthKeyFor(year, month-1)
}
