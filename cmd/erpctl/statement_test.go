package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/erp-api/internal/date"
	"github.com/hongminglow/erp-api/internal/ledger"
	"github.com/hongminglow/erp-api/internal/models"
)

func TestPrintStatement(t *testing.T) {
	st := ledger.BuildStatement("Cash Account", []models.Transaction{
		{Date: date.New(2026, 1, 10), Particulars: "Rent paid", Type: models.Credit, Amount: decimal.NewFromInt(5000)},
		{Date: date.New(2026, 1, 1), Particulars: "Capital", Type: models.Debit, Amount: decimal.NewFromInt(50000)},
		{Date: date.New(2026, 1, 5), Particulars: "Cash sales", Type: models.Debit, Amount: decimal.NewFromInt(15000)},
	})

	var buf bytes.Buffer
	printStatement(&buf, st, "USD")
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Cash Account\n"))
	assert.Contains(t, out, "$65,000.00 Dr")
	assert.Contains(t, out, "Closing balance: $60,000.00 Dr")
	assert.Less(t, strings.Index(out, "Capital"), strings.Index(out, "Rent paid"))
}

func TestStatementCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "txs.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
		{"account": "Cash Account", "date": "2026-01-01", "particulars": "Capital", "type": "Debit", "amount": "100"},
		{"account": "Bank Account", "date": "2026-01-02", "particulars": "Deposit", "type": "Debit", "amount": "40"}
	]`), 0o644))

	cmd := &statementCmd{}
	fs := flag.NewFlagSet("statement", flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse([]string{"-account", "Bank Account", file}))
	assert.Equal(t, subcommands.ExitSuccess, cmd.Execute(context.Background(), fs))

	fs = flag.NewFlagSet("statement", flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse([]string{"-currency", "XYZ", file}))
	assert.Equal(t, subcommands.ExitUsageError, cmd.Execute(context.Background(), fs))

	fs = flag.NewFlagSet("statement", flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse(nil))
	assert.Equal(t, subcommands.ExitUsageError, cmd.Execute(context.Background(), fs))
}
