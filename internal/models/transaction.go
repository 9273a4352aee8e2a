package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/erp-api/internal/date"
)

// EntryType tells whether an amount increases (Debit) or decreases (Credit) a balance.
type EntryType string

const (
	Debit  EntryType = "Debit"
	Credit EntryType = "Credit"
)

// ParseEntryType accepts "debit"/"credit" in any case.
func ParseEntryType(s string) (EntryType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debit", "dr":
		return Debit, nil
	case "credit", "cr":
		return Credit, nil
	default:
		return "", fmt.Errorf("unknown entry type %q", s)
	}
}

// Transaction is one posting against a named ledger account.
type Transaction struct {
	ID          string          `json:"id"`
	Account     string          `json:"account"`
	Date        date.Date       `json:"date"`
	Particulars string          `json:"particulars"`
	VoucherNo   string          `json:"voucher_no,omitempty"`
	Type        EntryType       `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// DaybookEntry is a row of the day-book. Exactly one of Debit and Credit is non-zero.
type DaybookEntry struct {
	ID          string          `json:"id"`
	Date        date.Date       `json:"date"`
	VoucherNo   string          `json:"voucher_no"`
	Particulars string          `json:"particulars"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
	ImageURL    string          `json:"image,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Type reports the side the entry posts to.
func (e DaybookEntry) Type() EntryType {
	if e.Credit.IsPositive() {
		return Credit
	}
	return Debit
}

// Amount returns the non-zero side of the entry.
func (e DaybookEntry) Amount() decimal.Decimal {
	if e.Credit.IsPositive() {
		return e.Credit
	}
	return e.Debit
}
