package ledger

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatAmount renders the absolute value of amount in currency, e.g. "$60,000.00".
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := *money.New(0, currency).Currency()
	minor := amount.Abs().Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatBalance renders a balance with its Dr/Cr label, e.g. "$5,000.00 Cr".
func FormatBalance(balance decimal.Decimal, currency string) string {
	return FormatAmount(balance, currency) + " " + string(SideOf(balance))
}
