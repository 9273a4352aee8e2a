// Package ledger computes running balances for account ledgers and the day-book.
//
// Everything here is a pure transform over caller-supplied slices; inputs are
// never modified.
package ledger

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/erp-api/internal/models"
)

// Side is the presentation label of a balance.
type Side string

const (
	Dr Side = "Dr"
	Cr Side = "Cr"
)

// SideOf labels non-negative balances Dr and negative balances Cr.
func SideOf(balance decimal.Decimal) Side {
	if balance.IsNegative() {
		return Cr
	}
	return Dr
}

// Line is a transaction annotated with the balance after it was applied.
type Line struct {
	models.Transaction
	Balance decimal.Decimal `json:"balance"`
	Side    Side            `json:"side"`
}

// Statement is the chronological view of one account.
type Statement struct {
	Account     string          `json:"account"`
	Lines       []Line          `json:"transactions"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Closing     decimal.Decimal `json:"closing_balance"`
	Side        Side            `json:"side"`
}

// Apply returns balance moved by amount in the direction of t.
func Apply(balance decimal.Decimal, t models.EntryType, amount decimal.Decimal) decimal.Decimal {
	if t == models.Credit {
		return balance.Sub(amount)
	}
	return balance.Add(amount)
}

// SortByDate returns a copy of txs ordered by date; equal dates keep input order.
func SortByDate(txs []models.Transaction) []models.Transaction {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b models.Transaction) int {
		return a.Date.Time().Compare(b.Date.Time())
	})
	return sorted
}

// BuildStatement sorts txs chronologically and folds a running balance from zero.
func BuildStatement(account string, txs []models.Transaction) Statement {
	st := Statement{
		Account:     account,
		Lines:       make([]Line, 0, len(txs)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		Closing:     decimal.Zero,
	}
	balance := decimal.Zero
	for _, tx := range SortByDate(txs) {
		balance = Apply(balance, tx.Type, tx.Amount)
		if tx.Type == models.Credit {
			st.TotalCredit = st.TotalCredit.Add(tx.Amount)
		} else {
			st.TotalDebit = st.TotalDebit.Add(tx.Amount)
		}
		st.Lines = append(st.Lines, Line{Transaction: tx, Balance: balance, Side: SideOf(balance)})
	}
	st.Closing = balance
	st.Side = SideOf(balance)
	return st
}
