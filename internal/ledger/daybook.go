package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/erp-api/internal/date"
	"github.com/hongminglow/erp-api/internal/models"
)

// BalancePolicy decides how a day-book insert affects running balances.
type BalancePolicy int

const (
	// AppendOnly computes the new balance from the current top entry only.
	// Back-dated inserts do not revise later balances.
	AppendOnly BalancePolicy = iota
	// RecomputeOnInsert refolds every balance in date order after an insert.
	RecomputeOnInsert
)

func (p BalancePolicy) String() string {
	switch p {
	case AppendOnly:
		return "append"
	case RecomputeOnInsert:
		return "recompute"
	default:
		return "unknown"
	}
}

// ParseBalancePolicy parses "append" or "recompute".
func ParseBalancePolicy(s string) (BalancePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "append", "append-only":
		return AppendOnly, nil
	case "recompute", "recompute-on-insert":
		return RecomputeOnInsert, nil
	default:
		return 0, fmt.Errorf("unknown balance policy: %q", s)
	}
}

// NewEntry builds an unposted day-book entry with the amount on the side given by t.
func NewEntry(on date.Date, voucherNo, particulars string, t models.EntryType, amount decimal.Decimal) models.DaybookEntry {
	e := models.DaybookEntry{
		Date:        on,
		VoucherNo:   voucherNo,
		Particulars: particulars,
		Debit:       decimal.Zero,
		Credit:      decimal.Zero,
		Balance:     decimal.Zero,
	}
	if t == models.Credit {
		e.Credit = amount
	} else {
		e.Debit = amount
	}
	return e
}

// Post prepends entry to the most-recent-first list entries and returns the new list.
// The posted entry is always element 0 of the result.
func Post(entries []models.DaybookEntry, entry models.DaybookEntry, policy BalancePolicy) []models.DaybookEntry {
	top := decimal.Zero
	if len(entries) > 0 {
		top = entries[0].Balance
	}
	entry.Balance = Apply(top, entry.Type(), entry.Amount())

	out := make([]models.DaybookEntry, 0, len(entries)+1)
	out = append(out, entry)
	out = append(out, entries...)
	if policy == RecomputeOnInsert {
		out = Recompute(out)
	}
	return out
}

// Recompute refolds balances of a most-recent-first list in date order.
// Entries on the same date are applied oldest insertion first. The list order is kept.
func Recompute(entries []models.DaybookEntry) []models.DaybookEntry {
	out := slices.Clone(entries)
	// Index n-1 is the oldest insertion.
	order := make([]int, len(out))
	for i := range order {
		order[i] = len(out) - 1 - i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return out[a].Date.Time().Compare(out[b].Date.Time())
	})
	balance := decimal.Zero
	for _, i := range order {
		balance = Apply(balance, out[i].Type(), out[i].Amount())
		out[i].Balance = balance
	}
	return out
}

// Totals summarizes a set of day-book entries.
type Totals struct {
	Debit  decimal.Decimal `json:"total_debit"`
	Credit decimal.Decimal `json:"total_credit"`
	Net    decimal.Decimal `json:"net"`
	Side   Side            `json:"side"`
}

// DaybookTotals sums both columns; Net is Debit minus Credit.
func DaybookTotals(entries []models.DaybookEntry) Totals {
	t := Totals{Debit: decimal.Zero, Credit: decimal.Zero}
	for _, e := range entries {
		t.Debit = t.Debit.Add(e.Debit)
		t.Credit = t.Credit.Add(e.Credit)
	}
	t.Net = t.Debit.Sub(t.Credit)
	t.Side = SideOf(t.Net)
	return t
}

// FilterDaybook keeps entries dated on (when non-zero) whose particulars or
// voucher number contain query, case-insensitively.
func FilterDaybook(entries []models.DaybookEntry, on date.Date, query string) []models.DaybookEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]models.DaybookEntry, 0, len(entries))
	for _, e := range entries {
		if !on.IsZero() && e.Date != on {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(e.Particulars), query) &&
			!strings.Contains(strings.ToLower(e.VoucherNo), query) {
			continue
		}
		out = append(out, e)
	}
	return out
}
