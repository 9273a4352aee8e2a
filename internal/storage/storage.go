package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/erp-api/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrUnavailable indicates no backend accepted the operation.
var ErrUnavailable = errors.New("storage unavailable")

// UserStore captures persistence operations for user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) error
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// EmployeeStore captures persistence operations for employees.
// ListEmployees results are not required to be ordered.
type EmployeeStore interface {
	CreateEmployee(ctx context.Context, employee models.Employee) error
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

// DaybookStore persists day-book entries. ListDaybook returns most recent first.
type DaybookStore interface {
	CreateDaybookEntry(ctx context.Context, entry models.DaybookEntry) error
	ListDaybook(ctx context.Context) ([]models.DaybookEntry, error)
}

// TransactionStore persists ledger postings per account.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx models.Transaction) error
	ListTransactions(ctx context.Context, account string) ([]models.Transaction, error)
}

// Store is a complete backend.
type Store interface {
	UserStore
	EmployeeStore
	DaybookStore
	TransactionStore
}
