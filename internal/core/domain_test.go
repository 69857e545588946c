package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2025 || d.Month() != 3 || d.Day() != 9 {
		t.Fatalf("parsed wrong date: %s", d)
	}

	bads := []string{"", "2025-3-9", "2025-02-30", "09/03/2025", "garbage"}
	for _, s := range bads {
		if _, err := ParseDate(s); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("%q: expected ErrInvalidDate, got %v", s, err)
		}
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2025, 3, 9)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2025-03-09"` {
		t.Fatalf("marshaled as %s", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip changed the date: %s", back)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{Date: NewDate(2025, 3, 1), Top: Spending, Item: "식비", Amount: 100}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Top: Spending, Item: "식비", Amount: 100},                                 // zero date
		{Date: NewDate(2025, 3, 1), Top: "snacks", Item: "식비", Amount: 100},     // bad category
		{Date: NewDate(2025, 3, 1), Top: Spending, Item: "", Amount: 100},        // empty name
		{Date: NewDate(2025, 3, 1), Top: Spending, Item: "식비", Amount: 0},       // zero amount
		{Date: NewDate(2025, 3, 1), Top: Spending, Item: "식비", Amount: -100},    // negative
	}
	for i, tx := range bads {
		if err := tx.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestSettingsValidate(t *testing.T) {
	for _, day := range []int{1, 15, 31} {
		if err := (Settings{CycleStartDay: day}).Validate(); err != nil {
			t.Errorf("day %d: expected ok, got %v", day, err)
		}
	}
	for _, day := range []int{0, -1, 32, 100} {
		if err := (Settings{CycleStartDay: day}).Validate(); !errors.Is(err, ErrBadStartDay) {
			t.Errorf("day %d: expected ErrBadStartDay, got %v", day, err)
		}
	}
}
