package ledger

import "slices"

// Accounts is the chart of accounts transactions may be posted to.
var Accounts = []string{
	"Cash Account",
	"Bank Account",
	"Sales Account",
	"Purchase Account",
	"Salary Expense",
	"Rent Expense",
	"Office Supplies",
}

// IsAccount reports whether name is in the chart of accounts.
func IsAccount(name string) bool {
	return slices.Contains(Accounts, name)
}
