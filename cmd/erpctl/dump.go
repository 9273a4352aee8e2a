package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/hongminglow/erp-api/internal/models"
	"github.com/hongminglow/erp-api/internal/storage"
)

type dumpCmd struct {
	out string
}

func (*dumpCmd) Name() string     { return "dump" }
func (*dumpCmd) Synopsis() string { return "export users and employees of both stores to JSON" }
func (*dumpCmd) Usage() string {
	return `erpctl dump [-o <file>]

  Reads users and employees from each backend separately, so drift between
  the two stores is visible. Password hashes are never written.
`
}

func (c *dumpCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "db_data.json", "Output file.")
}

type backendDump struct {
	Users     []models.User     `json:"users"`
	Employees []models.Employee `json:"employees"`
	Errors    []string          `json:"errors,omitempty"`
}

type dumpFile struct {
	Primary   backendDump `json:"primary"`
	Secondary backendDump `json:"secondary"`
}

func dumpBackend(ctx context.Context, s storage.Store) backendDump {
	var d backendDump
	users, err := s.ListUsers(ctx)
	if err != nil {
		d.Errors = append(d.Errors, fmt.Sprintf("users: %v", err))
	}
	employees, err := s.ListEmployees(ctx)
	if err != nil {
		d.Errors = append(d.Errors, fmt.Sprintf("employees: %v", err))
	}
	d.Users, d.Employees = users, employees
	return d
}

func (c *dumpCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	stores, err := openStores(ctx)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer stores.Close()

	out := dumpFile{
		Primary:   dumpBackend(ctx, stores.Postgres),
		Secondary: dumpBackend(ctx, stores.Document),
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fail("encode dump: %v", err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(c.out, data, 0o644); err != nil {
		fail("write %s: %v", c.out, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("wrote %s (primary: %d users, %d employees; secondary: %d users, %d employees)\n",
		c.out, len(out.Primary.Users), len(out.Primary.Employees), len(out.Secondary.Users), len(out.Secondary.Employees))
	return subcommands.ExitSuccess
}
