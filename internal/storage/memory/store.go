// Package memory is an in-process storage.Store, used as the document store
// when no external one is configured and as a test double.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/hongminglow/erp-api/internal/models"
	"github.com/hongminglow/erp-api/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps records in slices guarded by a mutex.
type Store struct {
	mu           sync.Mutex
	users        []models.User
	employees    []models.Employee
	daybook      []models.DaybookEntry // insertion order
	transactions []models.Transaction
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

func (s *Store) CreateUser(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == user.ID || strings.EqualFold(u.Email, user.Email) {
			return storage.ErrAlreadyExists
		}
	}
	s.users = append(s.users, user)
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.users), nil
}

func (s *Store) CreateEmployee(ctx context.Context, employee models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.employees, func(e models.Employee) bool { return e.ID == employee.ID }) {
		return storage.ErrAlreadyExists
	}
	s.employees = append(s.employees, employee)
	return nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.employees), nil
}

// DeleteEmployee removes the employee if present; a missing id is not an error.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.employees = slices.DeleteFunc(s.employees, func(e models.Employee) bool { return e.ID == id })
	return nil
}

func (s *Store) CreateDaybookEntry(ctx context.Context, entry models.DaybookEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.daybook, func(e models.DaybookEntry) bool { return e.ID == entry.ID }) {
		return storage.ErrAlreadyExists
	}
	s.daybook = append(s.daybook, entry)
	return nil
}

func (s *Store) ListDaybook(ctx context.Context) ([]models.DaybookEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := slices.Clone(s.daybook)
	slices.Reverse(out)
	return out, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.transactions, func(t models.Transaction) bool { return t.ID == tx.ID }) {
		return storage.ErrAlreadyExists
	}
	s.transactions = append(s.transactions, tx)
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, account string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Transaction
	for _, t := range s.transactions {
		if t.Account == account {
			out = append(out, t)
		}
	}
	return out, nil
}
