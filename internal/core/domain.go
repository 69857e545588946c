package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Spending TopCategory = "spending"
	Savings  TopCategory = "savings"
	Other    TopCategory = "other"
)

// PlaceholderItemName is assigned when an item is created without a name.
const PlaceholderItemName = "새 항목"

type (
	// TopCategory is the three-way classification of items and transactions.
	// Only Spending participates in reports.
	TopCategory string

	Date struct {
		time.Time
	}

	// BudgetItem is a planned spending definition owned by exactly one
	// budget month. Plan is in whole currency units.
	BudgetItem struct {
		ID   string      `json:"id"`
		Top  TopCategory `json:"topCategory"`
		Name string      `json:"name"`
		Plan int64       `json:"plan"`
	}

	// Transaction is a dated expense record. It is independent of any
	// budget month; period membership is computed from Date. Item is
	// matched against BudgetItem.Name by string, deliberately not a
	// foreign key: renaming an item leaves old transactions unmatched.
	Transaction struct {
		ID     string      `json:"id"`
		Date   Date        `json:"date"`
		Top    TopCategory `json:"topCategory"`
		Item   string      `json:"itemName"`
		Amount int64       `json:"amount"`
		Memo   string      `json:"memo,omitempty"`
	}

	// Settings is the process-wide cycle configuration. Changes apply to
	// periods resolved after the change, never retroactively.
	Settings struct {
		CycleStartDay int `json:"cycleStartDay"`
	}
)

// Invalid-argument errors are caller contract violations; validation errors
// are user-recoverable. Storage failures live in the storage package.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrValidation      = errors.New("validation failed")

	ErrInvalidMonth   = fmt.Errorf("%w: month out of range", ErrInvalidArgument)
	ErrBadMonthKey    = fmt.Errorf("%w: malformed month key", ErrInvalidArgument)
	ErrInvalidDate    = fmt.Errorf("%w: invalid calendar date", ErrValidation)
	ErrInvalidAmount  = fmt.Errorf("%w: amount must be a positive integer", ErrValidation)
	ErrNegativePlan   = fmt.Errorf("%w: plan amount must not be negative", ErrValidation)
	ErrEmptyItemName  = fmt.Errorf("%w: item name is empty", ErrValidation)
	ErrBadTopCategory = fmt.Errorf("%w: unknown top category", ErrValidation)
	ErrBadStartDay    = fmt.Errorf("%w: cycle start day must be between 1 and 31", ErrValidation)
)

// NewDate creates a Date at day granularity (midnight UTC).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t.UTC()}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// AddDays returns the date shifted by the given number of days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (tc TopCategory) Validate() error {
	switch tc {
	case Spending, Savings, Other:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrBadTopCategory, string(tc))
}

func (it BudgetItem) Validate() error {
	if err := it.Top.Validate(); err != nil {
		return err
	}
	if it.Plan < 0 {
		return ErrNegativePlan
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Top.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Item) == "" {
		return ErrEmptyItemName
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s Settings) Validate() error {
	if s.CycleStartDay < 1 || s.CycleStartDay > 31 {
		return fmt.Errorf("%w: got %d", ErrBadStartDay, s.CycleStartDay)
	}
	return nil
}

// DefaultSettings is the seed configuration for a fresh state.
func DefaultSettings() Settings {
	return Settings{CycleStartDay: 1}
}
