package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/erp-api/internal/date"
	"github.com/hongminglow/erp-api/internal/models"
	"github.com/hongminglow/erp-api/internal/storage"
	"github.com/hongminglow/erp-api/internal/storage/replicated"
)

type setupCmd struct {
	email    string
	password string
	noSeed   bool
}

func (*setupCmd) Name() string     { return "setup" }
func (*setupCmd) Synopsis() string { return "create tables in both stores and seed sample data" }
func (*setupCmd) Usage() string {
	return `erpctl setup [-email <admin email>] [-password <admin password>] [-no-seed]

  Applies the Postgres schema, creates the DynamoDB tables, and seeds the
  admin user and a few sample employees. Running it twice is safe.
`
}

func (c *setupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "admin@edmail.com", "Email of the seeded admin user.")
	f.StringVar(&c.password, "password", "123456", "Password of the seeded admin user.")
	f.BoolVar(&c.noSeed, "no-seed", false, "Only create tables.")
}

func (c *setupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	stores, err := openStores(ctx)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer stores.Close()

	if err := stores.Prepare(ctx); err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	fmt.Println("tables ready")

	if c.noSeed {
		return subcommands.ExitSuccess
	}
	if err := seed(ctx, stores.Replicated, c.email, c.password); err != nil {
		fail("seed: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

var sampleEmployees = []models.Employee{
	{Name: "John Smith", Position: "Senior Developer", Department: "IT", ExpiryDate: date.New(2026, 12, 31)},
	{Name: "Sarah Jones", Position: "HR Manager", Department: "HR", ExpiryDate: date.New(2025, 6, 30)},
	{Name: "Mike Brown", Position: "Technician", Department: "Maintenance", ExpiryDate: date.New(2024, 5, 15)},
}

func seed(ctx context.Context, store *replicated.Store, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	switch _, err := store.CreateUser(ctx, "Admin User", email, string(hash)); {
	case errors.Is(err, storage.ErrAlreadyExists):
		fmt.Printf("user %s already exists\n", email)
	case err != nil:
		return fmt.Errorf("create admin user: %w", err)
	default:
		fmt.Printf("created user %s\n", email)
	}

	if existing := store.ListEmployees(ctx); len(existing) > 0 {
		fmt.Printf("%d employees already present, skipping sample employees\n", len(existing))
		return nil
	}
	today := date.Today()
	for _, e := range sampleEmployees {
		created, err := store.CreateEmployee(ctx, e.WithStatus(today))
		if err != nil {
			return fmt.Errorf("create employee %s: %w", e.Name, err)
		}
		fmt.Printf("created employee %s (%s, %s)\n", created.Name, created.ID, created.Status)
	}
	return nil
}
