package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/google/subcommands"

	"github.com/hongminglow/erp-api/internal/ledger"
	"github.com/hongminglow/erp-api/internal/models"
)

type statementCmd struct {
	account  string
	currency string
}

func (*statementCmd) Name() string     { return "statement" }
func (*statementCmd) Synopsis() string { return "print a ledger statement from a JSON file of transactions" }
func (*statementCmd) Usage() string {
	return `erpctl statement -account <name> [-currency <code>] <file>

  Reads a JSON array of transactions and prints the running-balance
  statement of one account. Transactions without an account are included.
`
}

func (c *statementCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "Cash Account", "Account to report on.")
	f.StringVar(&c.currency, "currency", "USD", "ISO currency code used for display.")
}

func (c *statementCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fail("expected exactly one transactions file")
		return subcommands.ExitUsageError
	}
	if money.GetCurrency(c.currency) == nil {
		fail("unknown currency %q", c.currency)
		return subcommands.ExitUsageError
	}
	data, err := os.ReadFile(f.Arg(0))
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	var txs []models.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		fail("decode %s: %v", f.Arg(0), err)
		return subcommands.ExitFailure
	}

	var selected []models.Transaction
	for _, tx := range txs {
		if tx.Account == "" || tx.Account == c.account {
			selected = append(selected, tx)
		}
	}
	printStatement(os.Stdout, ledger.BuildStatement(c.account, selected), c.currency)
	return subcommands.ExitSuccess
}

func printStatement(w io.Writer, st ledger.Statement, currency string) {
	fmt.Fprintf(w, "%s\n\n", st.Account)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Date\tParticulars\tDebit\tCredit\tBalance\t")
	for _, l := range st.Lines {
		debit, credit := "", ""
		if l.Type == models.Credit {
			credit = ledger.FormatAmount(l.Amount, currency)
		} else {
			debit = ledger.FormatAmount(l.Amount, currency)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", l.Date, l.Particulars, debit, credit, ledger.FormatBalance(l.Balance, currency))
	}
	fmt.Fprintf(tw, "\tTotal\t%s\t%s\t\t\n", ledger.FormatAmount(st.TotalDebit, currency), ledger.FormatAmount(st.TotalCredit, currency))
	tw.Flush()
	fmt.Fprintf(w, "\nClosing balance: %s\n", ledger.FormatBalance(st.Closing, currency))
}
