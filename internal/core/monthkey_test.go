package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseMonthKey(t *testing.T) {
	k, err := ParseMonthKey("2025-03")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if k != "2025-03" {
		t.Fatalf("got %q", k)
	}

	bads := []string{"", "2025", "2025-3", "2025/03", "2025-00", "2025-13", "2025-031", "-025-03", "+025-03", "2025--3", "20x5-03"}
	for _, s := range bads {
		if _, err := ParseMonthKey(s); !errors.Is(err, ErrBadMonthKey) {
			t.Errorf("%q: expected ErrBadMonthKey, got %v", s, err)
		}
	}
}

func TestMonthKeyPrev(t *testing.T) {
	cases := []struct{ in, want MonthKey }{
		{"2025-03", "2025-02"},
		{"2025-01", "2024-12"},
	}
	for _, tc := range cases {
		if got := tc.in.Prev(); got != tc.want {
			t.Errorf("%s.Prev() = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestMonthKeyOf(t *testing.T) {
	k := MonthKeyOf(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC))
	if k != "2025-12" {
		t.Fatalf("got %q", k)
	}
}

func TestMonthKeyOrdering(t *testing.T) {
	// Lexicographic comparison of keys is chronological comparison.
	if !("2024-12" < MonthKey("2025-01") && MonthKey("2025-01") < "2025-02") {
		t.Fatal("month keys must order lexicographically by date")
	}
}
