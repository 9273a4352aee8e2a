// Package replicated combines a primary (relational) and a secondary
// (document) store behind one best-effort policy: reads prefer the primary
// and fall back to the secondary, writes go to both in sequence.
//
// Backend errors never leave this package. They are logged, counted, and
// turned into empty results, or into storage.ErrUnavailable when no backend
// accepted a write.
package replicated

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/erp-api/internal/models"
	"github.com/hongminglow/erp-api/internal/storage"
)

const (
	primaryName   = "primary"
	secondaryName = "secondary"
)

type backend struct {
	name  string
	store storage.Store
}

// Store applies the replicate policy to a pair of backends.
type Store struct {
	primary   backend
	secondary backend
	policy    Policy
	log       *slog.Logger

	now   func() time.Time
	newID func() (string, error)
}

// New builds a Store. A nil logger uses slog.Default().
func New(primary, secondary storage.Store, policy Policy, logger *slog.Logger) *Store {
	if policy.Timeout <= 0 {
		policy.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		primary:   backend{name: primaryName, store: primary},
		secondary: backend{name: secondaryName, store: secondary},
		policy:    policy,
		log:       logger.With("component", "replicated-store"),
		now:       time.Now,
		newID:     newTimeOrderedID,
	}
}

func newTimeOrderedID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// call runs fn against one backend under the per-call timeout and records the outcome.
func call[T any](ctx context.Context, s *Store, b backend, op string, fn func(context.Context, storage.Store) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, s.policy.Timeout)
	defer cancel()

	start := time.Now()
	v, err := fn(ctx, b.store)
	backendLatency.WithLabelValues(b.name, op).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		backendOps.WithLabelValues(b.name, op, "ok").Inc()
	case errors.Is(err, storage.ErrNotFound):
		backendOps.WithLabelValues(b.name, op, "not_found").Inc()
	default:
		backendOps.WithLabelValues(b.name, op, "error").Inc()
		s.log.Warn("backend call failed", "op", op, "backend", b.name, "error", err)
	}
	return v, err
}

// readWithFallback reads from the primary and, when it fails or returns
// nothing usable, from the secondary. Failures of both yield the zero value.
func readWithFallback[T any](ctx context.Context, s *Store, op string, read func(context.Context, storage.Store) (T, error), empty func(T) bool) T {
	v, err := call(ctx, s, s.primary, op, read)
	if err == nil && (!empty(v) || !s.policy.FallbackOnEmpty) {
		return v
	}

	fallbackReads.WithLabelValues(op).Inc()
	v, err = call(ctx, s, s.secondary, op, read)
	if err != nil {
		var zero T
		return zero
	}
	return v
}

// mirrorWrite writes to the primary and then, regardless of the outcome, to
// the secondary. It fails only when neither accepted the write.
func (s *Store) mirrorWrite(ctx context.Context, op string, write func(context.Context, storage.Store) error) error {
	fn := func(ctx context.Context, st storage.Store) (struct{}, error) {
		return struct{}{}, write(ctx, st)
	}
	_, perr := call(ctx, s, s.primary, op, fn)
	_, serr := call(ctx, s, s.secondary, op, fn)

	switch {
	case perr == nil && serr == nil:
		return nil
	case perr != nil && serr != nil:
		s.log.Error("write rejected by every backend", "op", op, "primary_error", perr, "secondary_error", serr)
		return fmt.Errorf("%s: %w", op, storage.ErrUnavailable)
	case perr != nil:
		partialWrites.WithLabelValues(op, primaryName).Inc()
		s.log.Warn("partial write", "op", op, "stored_in", secondaryName, "failed_backend", primaryName)
	default:
		partialWrites.WithLabelValues(op, secondaryName).Inc()
		s.log.Warn("partial write", "op", op, "stored_in", primaryName, "failed_backend", secondaryName)
	}
	return nil
}

func isEmpty[T any](v []T) bool { return len(v) == 0 }

// FindUserByEmail returns the first user with email, looking in the
// secondary when the primary fails or has no match. A missing user and
// unreachable backends look the same.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, bool) {
	user := readWithFallback(ctx, s, "find_user_by_email",
		func(ctx context.Context, st storage.Store) (models.User, error) {
			return st.FindUserByEmail(ctx, email)
		},
		func(u models.User) bool { return u.ID == "" },
	)
	return user, user.ID != ""
}

// CreateUser registers a user in both stores and returns its id.
// It fails with storage.ErrAlreadyExists, without writing, when the email is taken.
func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string) (string, error) {
	if _, exists := s.FindUserByEmail(ctx, email); exists {
		return "", storage.ErrAlreadyExists
	}
	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generate user id: %w", err)
	}
	user := models.User{
		ID:           id,
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.mirrorWrite(ctx, "create_user", func(ctx context.Context, st storage.Store) error {
		return st.CreateUser(ctx, user)
	}); err != nil {
		return "", err
	}
	return id, nil
}

// ListEmployees returns employees ordered by expiry date ascending,
// whichever backend served them.
func (s *Store) ListEmployees(ctx context.Context) []models.Employee {
	employees := readWithFallback(ctx, s, "list_employees",
		func(ctx context.Context, st storage.Store) ([]models.Employee, error) {
			return st.ListEmployees(ctx)
		},
		isEmpty[models.Employee],
	)
	slices.SortStableFunc(employees, func(a, b models.Employee) int {
		return a.ExpiryDate.Time().Compare(b.ExpiryDate.Time())
	})
	return employees
}

// CreateEmployee assigns an id and creation time, then mirrors the employee into both stores.
func (s *Store) CreateEmployee(ctx context.Context, e models.Employee) (models.Employee, error) {
	id, err := s.newID()
	if err != nil {
		return models.Employee{}, fmt.Errorf("generate employee id: %w", err)
	}
	e.ID = id
	e.CreatedAt = s.now().UTC()
	if err := s.mirrorWrite(ctx, "create_employee", func(ctx context.Context, st storage.Store) error {
		return st.CreateEmployee(ctx, e)
	}); err != nil {
		return models.Employee{}, err
	}
	return e, nil
}

// DeleteEmployee removes the employee from both stores. Unknown ids succeed.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	return s.mirrorWrite(ctx, "delete_employee", func(ctx context.Context, st storage.Store) error {
		return st.DeleteEmployee(ctx, id)
	})
}

// ListDaybook returns day-book entries, most recent first.
func (s *Store) ListDaybook(ctx context.Context) []models.DaybookEntry {
	return readWithFallback(ctx, s, "list_daybook",
		func(ctx context.Context, st storage.Store) ([]models.DaybookEntry, error) {
			return st.ListDaybook(ctx)
		},
		isEmpty[models.DaybookEntry],
	)
}

// CreateDaybookEntry assigns an id and creation time, then mirrors the entry.
func (s *Store) CreateDaybookEntry(ctx context.Context, e models.DaybookEntry) (models.DaybookEntry, error) {
	id, err := s.newID()
	if err != nil {
		return models.DaybookEntry{}, fmt.Errorf("generate entry id: %w", err)
	}
	e.ID = id
	e.CreatedAt = s.now().UTC()
	if err := s.mirrorWrite(ctx, "create_daybook_entry", func(ctx context.Context, st storage.Store) error {
		return st.CreateDaybookEntry(ctx, e)
	}); err != nil {
		return models.DaybookEntry{}, err
	}
	return e, nil
}

// ListTransactions returns the postings of account in insertion order.
func (s *Store) ListTransactions(ctx context.Context, account string) []models.Transaction {
	return readWithFallback(ctx, s, "list_transactions",
		func(ctx context.Context, st storage.Store) ([]models.Transaction, error) {
			return st.ListTransactions(ctx, account)
		},
		isEmpty[models.Transaction],
	)
}

// CreateTransaction assigns an id and creation time, then mirrors the posting.
func (s *Store) CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	id, err := s.newID()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("generate transaction id: %w", err)
	}
	tx.ID = id
	tx.CreatedAt = s.now().UTC()
	if err := s.mirrorWrite(ctx, "create_transaction", func(ctx context.Context, st storage.Store) error {
		return st.CreateTransaction(ctx, tx)
	}); err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}
