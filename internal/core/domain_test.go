package core

import (
	"testing"
	"time"
)

func TestNewTransaction(t *testing.T) {
	now := time.Date(2024, 7, 1, 9, 30, 15, 123456000, time.UTC)
	tx := NewTransaction(1000, "Salary", "July pay", Income, now)

	if tx.ID != "20240701093015123456" {
		t.Fatalf("unexpected id: %q", tx.ID)
	}
	if tx.Date != "2024-07-01 09:30:15" {
		t.Fatalf("unexpected date: %q", tx.Date)
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("expected valid transaction, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{Amount: 10, Category: "Food", Description: "lunch", Type: Expense}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		tx   Transaction
		want error
	}{
		{"zero amount", Transaction{Amount: 0, Category: "c", Description: "d", Type: Income}, ErrInvalidAmount},
		{"negative amount", Transaction{Amount: -5, Category: "c", Description: "d", Type: Income}, ErrInvalidAmount},
		{"blank category", Transaction{Amount: 1, Category: "  ", Description: "d", Type: Income}, ErrEmptyCategory},
		{"blank description", Transaction{Amount: 1, Category: "c", Description: "", Type: Income}, ErrEmptyDescription},
		{"bad type", Transaction{Amount: 1, Category: "c", Description: "d", Type: "transfer"}, ErrInvalidType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.tx.Validate(); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestMonthKeyFromDate(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"2024-07-01 09:30:15", "2024-07"},
		{"2024-12-31 23:59:59", "2024-12"},
		// Fallback: not the canonical layout, take the first 7 chars.
		{"2024-07-01", "2024-07"},
		{"2024-07", "2024-07"},
		{"bogus", "bogus"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := MonthKeyFromDate(tc.in); got != tc.out {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestMonthSummaryAccumulate(t *testing.T) {
	var s MonthSummary
	s = s.Accumulate(Transaction{Amount: 1000, Type: Income})
	s = s.Accumulate(Transaction{Amount: 300, Type: Expense})
	s = s.Accumulate(Transaction{Amount: 50, Type: "unknown"})

	if s.Income != 1000 || s.Expense != 300 || s.Net != 700 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Net != s.Income-s.Expense {
		t.Fatalf("net invariant broken: %+v", s)
	}
}
