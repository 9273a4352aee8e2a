package models

import (
	"testing"

	"github.com/hongminglow/erp-api/internal/date"
)

func TestEmployeeStatusOn(t *testing.T) {
	today := date.MustParse("2026-01-15")
	tests := []struct {
		name   string
		expiry date.Date
		want   EmployeeStatus
	}{
		{"yesterday", today.Add(-1), StatusExpired},
		{"long expired", date.MustParse("2024-05-15"), StatusExpired},
		{"today", today, StatusExpiringSoon},
		{"30 days", today.Add(30), StatusExpiringSoon},
		{"31 days", today.Add(31), StatusActive},
		{"next year", date.MustParse("2027-01-15"), StatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EmployeeStatusOn(tt.expiry, today); got != tt.want {
				t.Errorf("EmployeeStatusOn(%v) = %q, want %q", tt.expiry, got, tt.want)
			}
		})
	}
}

func TestWithStatusDoesNotMutate(t *testing.T) {
	e := Employee{ID: "1", ExpiryDate: date.MustParse("2026-01-01"), Status: StatusActive}
	got := e.WithStatus(date.MustParse("2026-02-01"))
	if got.Status != StatusExpired {
		t.Errorf("status = %q, want Expired", got.Status)
	}
	if e.Status != StatusActive {
		t.Errorf("original mutated: %q", e.Status)
	}
}

func TestParseEntryType(t *testing.T) {
	for in, want := range map[string]EntryType{"debit": Debit, "Debit": Debit, " CREDIT ": Credit, "cr": Credit} {
		got, err := ParseEntryType(in)
		if err != nil || got != want {
			t.Errorf("ParseEntryType(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseEntryType("transfer"); err == nil {
		t.Error("expected error for unknown type")
	}
}
