package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/erp-api/internal/date"
	"github.com/hongminglow/erp-api/internal/models"
	"github.com/hongminglow/erp-api/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for the relational side.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store. The pool connects lazily, so an unreachable server is
// reported by the first query rather than here.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the tables and indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique_idx ON users (lower(email));`,
		`CREATE TABLE IF NOT EXISTS employees (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			position TEXT NOT NULL,
			department TEXT NOT NULL DEFAULT '',
			expiry_date DATE NOT NULL,
			status TEXT NOT NULL DEFAULT 'Active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS employees_expiry_idx ON employees (expiry_date);`,
		`CREATE TABLE IF NOT EXISTS daybook_entries (
			seq BIGSERIAL,
			id TEXT PRIMARY KEY,
			entry_date DATE NOT NULL,
			voucher_no TEXT NOT NULL,
			particulars TEXT NOT NULL,
			debit NUMERIC(18,2) NOT NULL DEFAULT 0,
			credit NUMERIC(18,2) NOT NULL DEFAULT 0,
			balance NUMERIC(18,2) NOT NULL DEFAULT 0,
			image_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS ledger_transactions (
			id TEXT PRIMARY KEY,
			account TEXT NOT NULL,
			tx_date DATE NOT NULL,
			particulars TEXT NOT NULL,
			voucher_no TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL CHECK (type IN ('Debit', 'Credit')),
			amount NUMERIC(18,2) NOT NULL CHECK (amount >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS ledger_transactions_account_idx ON ledger_transactions (account, tx_date);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) error {
	const query = `INSERT INTO users (id, name, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5);`
	_, err := s.pool.Exec(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	return mapWriteErr(err)
}

// FindUserByEmail fetches a user by email address, case-insensitively.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT id, name, email, password_hash, created_at FROM users WHERE lower(email) = lower($1);`
	row := s.pool.QueryRow(ctx, query, email)
	return scanUser(row)
}

// ListUsers returns every user ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	const query = `SELECT id, name, email, password_hash, created_at FROM users ORDER BY created_at;`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateEmployee inserts a new employee row.
func (s *Store) CreateEmployee(ctx context.Context, e models.Employee) error {
	const query = `
	INSERT INTO employees (id, name, position, department, expiry_date, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7);`
	_, err := s.pool.Exec(ctx, query, e.ID, e.Name, e.Position, e.Department, e.ExpiryDate.Time(), string(e.Status), e.CreatedAt)
	return mapWriteErr(err)
}

// ListEmployees returns employees ordered by expiry date ascending.
func (s *Store) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	const query = `
	SELECT id, name, position, department, expiry_date, status, created_at
	FROM employees
	ORDER BY expiry_date ASC, created_at ASC;`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		var e models.Employee
		var expiry time.Time
		var status string
		if err := rows.Scan(&e.ID, &e.Name, &e.Position, &e.Department, &expiry, &status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		e.ExpiryDate = date.FromTime(expiry)
		e.Status = models.EmployeeStatus(status)
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee; deleting a missing id is not an error.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1;`, id); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return nil
}

// CreateDaybookEntry inserts a day-book row.
func (s *Store) CreateDaybookEntry(ctx context.Context, e models.DaybookEntry) error {
	const query = `
	INSERT INTO daybook_entries (id, entry_date, voucher_no, particulars, debit, credit, balance, image_url, created_at)
	VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8, $9);`
	_, err := s.pool.Exec(ctx, query,
		e.ID, e.Date.Time(), e.VoucherNo, e.Particulars,
		e.Debit.String(), e.Credit.String(), e.Balance.String(),
		e.ImageURL, e.CreatedAt)
	return mapWriteErr(err)
}

// ListDaybook returns day-book rows, most recently inserted first.
func (s *Store) ListDaybook(ctx context.Context) ([]models.DaybookEntry, error) {
	const query = `
	SELECT id, entry_date, voucher_no, particulars, debit::text, credit::text, balance::text, image_url, created_at
	FROM daybook_entries
	ORDER BY created_at DESC, seq DESC;`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list daybook: %w", err)
	}
	defer rows.Close()

	var entries []models.DaybookEntry
	for rows.Next() {
		var e models.DaybookEntry
		var on time.Time
		var debit, credit, balance string
		if err := rows.Scan(&e.ID, &on, &e.VoucherNo, &e.Particulars, &debit, &credit, &balance, &e.ImageURL, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan daybook entry: %w", err)
		}
		e.Date = date.FromTime(on)
		if e.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("parse debit: %w", err)
		}
		if e.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("parse credit: %w", err)
		}
		if e.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("parse balance: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CreateTransaction inserts a ledger posting.
func (s *Store) CreateTransaction(ctx context.Context, tx models.Transaction) error {
	const query = `
	INSERT INTO ledger_transactions (id, account, tx_date, particulars, voucher_no, type, amount, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8);`
	_, err := s.pool.Exec(ctx, query,
		tx.ID, tx.Account, tx.Date.Time(), tx.Particulars, tx.VoucherNo, string(tx.Type), tx.Amount.String(), tx.CreatedAt)
	return mapWriteErr(err)
}

// ListTransactions returns the postings of one account in insertion order.
func (s *Store) ListTransactions(ctx context.Context, account string) ([]models.Transaction, error) {
	const query = `
	SELECT id, account, tx_date, particulars, voucher_no, type, amount::text, created_at
	FROM ledger_transactions
	WHERE account = $1
	ORDER BY created_at ASC;`
	rows, err := s.pool.Query(ctx, query, account)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var on time.Time
		var typ, amount string
		if err := rows.Scan(&tx.ID, &tx.Account, &on, &tx.Particulars, &tx.VoucherNo, &typ, &amount, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Date = date.FromTime(on)
		tx.Type = models.EntryType(typ)
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return storage.ErrAlreadyExists
	}
	return err
}
