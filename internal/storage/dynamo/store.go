// Package dynamo implements storage.Store on DynamoDB, one table per entity
// keyed by "id".
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/erp-api/internal/date"
	"github.com/hongminglow/erp-api/internal/models"
	"github.com/hongminglow/erp-api/internal/storage"
)

var _ storage.Store = (*Store)(nil)

const (
	emailIndex   = "email-index"
	accountIndex = "account-index"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Tables names the table used for each entity.
type Tables struct {
	Users        string
	Employees    string
	Daybook      string
	Transactions string
}

// TablesWithPrefix returns the default table names under prefix.
func TablesWithPrefix(prefix string) Tables {
	return Tables{
		Users:        prefix + "users",
		Employees:    prefix + "employees",
		Daybook:      prefix + "daybook_entries",
		Transactions: prefix + "ledger_transactions",
	}
}

// Store provides DynamoDB-backed persistence for the document side.
type Store struct {
	client API
	tables Tables
}

// New wraps a DynamoDB client.
func New(client API, tables Tables) *Store {
	return &Store{client: client, tables: tables}
}

type userItem struct {
	ID           string    `dynamodbav:"id"`
	Name         string    `dynamodbav:"name"`
	Email        string    `dynamodbav:"email"`
	PasswordHash string    `dynamodbav:"password_hash"`
	CreatedAt    time.Time `dynamodbav:"created_at"`
}

type employeeItem struct {
	ID         string    `dynamodbav:"id"`
	Name       string    `dynamodbav:"name"`
	Position   string    `dynamodbav:"position"`
	Department string    `dynamodbav:"department"`
	ExpiryDate string    `dynamodbav:"expiry_date"`
	Status     string    `dynamodbav:"status"`
	CreatedAt  time.Time `dynamodbav:"created_at"`
}

type daybookItem struct {
	ID          string    `dynamodbav:"id"`
	Date        string    `dynamodbav:"entry_date"`
	VoucherNo   string    `dynamodbav:"voucher_no"`
	Particulars string    `dynamodbav:"particulars"`
	Debit       string    `dynamodbav:"debit"`
	Credit      string    `dynamodbav:"credit"`
	Balance     string    `dynamodbav:"balance"`
	ImageURL    string    `dynamodbav:"image_url"`
	CreatedAt   time.Time `dynamodbav:"created_at"`
}

type transactionItem struct {
	ID          string    `dynamodbav:"id"`
	Account     string    `dynamodbav:"account"`
	Date        string    `dynamodbav:"tx_date"`
	Particulars string    `dynamodbav:"particulars"`
	VoucherNo   string    `dynamodbav:"voucher_no"`
	Type        string    `dynamodbav:"type"`
	Amount      string    `dynamodbav:"amount"`
	CreatedAt   time.Time `dynamodbav:"created_at"`
}

// CreateUser stores a user; the email index is not unique in DynamoDB, so
// callers check for duplicates first.
func (s *Store) CreateUser(ctx context.Context, u models.User) error {
	return s.put(ctx, s.tables.Users, userItem{
		ID:           u.ID,
		Name:         u.Name,
		Email:        strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	})
}

// FindUserByEmail queries the email index for the first match.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tables.Users),
		IndexName:              aws.String(emailIndex),
		KeyConditionExpression: aws.String("email = :email"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: strings.ToLower(email)},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return models.User{}, fmt.Errorf("query users by email: %w", err)
	}
	if len(out.Items) == 0 {
		return models.User{}, storage.ErrNotFound
	}
	var item userItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return models.User{}, fmt.Errorf("unmarshal user: %w", err)
	}
	return item.model(), nil
}

// ListUsers scans the users table.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var items []userItem
	if err := s.scan(ctx, s.tables.Users, &items); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(items))
	for _, item := range items {
		users = append(users, item.model())
	}
	slices.SortFunc(users, func(a, b models.User) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return users, nil
}

func (s *Store) CreateEmployee(ctx context.Context, e models.Employee) error {
	return s.put(ctx, s.tables.Employees, employeeItem{
		ID:         e.ID,
		Name:       e.Name,
		Position:   e.Position,
		Department: e.Department,
		ExpiryDate: e.ExpiryDate.String(),
		Status:     string(e.Status),
		CreatedAt:  e.CreatedAt,
	})
}

// ListEmployees scans the employees table. Results are unordered.
func (s *Store) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var items []employeeItem
	if err := s.scan(ctx, s.tables.Employees, &items); err != nil {
		return nil, err
	}
	employees := make([]models.Employee, 0, len(items))
	for _, item := range items {
		expiry, err := date.Parse(item.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("employee %s: %w", item.ID, err)
		}
		employees = append(employees, models.Employee{
			ID:         item.ID,
			Name:       item.Name,
			Position:   item.Position,
			Department: item.Department,
			ExpiryDate: expiry,
			Status:     models.EmployeeStatus(item.Status),
			CreatedAt:  item.CreatedAt,
		})
	}
	return employees, nil
}

// DeleteEmployee deletes by key; DynamoDB treats a missing key as success.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tables.Employees),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return nil
}

func (s *Store) CreateDaybookEntry(ctx context.Context, e models.DaybookEntry) error {
	return s.put(ctx, s.tables.Daybook, daybookItem{
		ID:          e.ID,
		Date:        e.Date.String(),
		VoucherNo:   e.VoucherNo,
		Particulars: e.Particulars,
		Debit:       e.Debit.String(),
		Credit:      e.Credit.String(),
		Balance:     e.Balance.String(),
		ImageURL:    e.ImageURL,
		CreatedAt:   e.CreatedAt,
	})
}

// ListDaybook scans the day-book table and orders it most recent first.
// Ids are time-ordered, so they break created_at ties.
func (s *Store) ListDaybook(ctx context.Context) ([]models.DaybookEntry, error) {
	var items []daybookItem
	if err := s.scan(ctx, s.tables.Daybook, &items); err != nil {
		return nil, err
	}
	entries := make([]models.DaybookEntry, 0, len(items))
	for _, item := range items {
		e, err := item.model()
		if err != nil {
			return nil, fmt.Errorf("daybook entry %s: %w", item.ID, err)
		}
		entries = append(entries, e)
	}
	slices.SortStableFunc(entries, func(a, b models.DaybookEntry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return entries, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx models.Transaction) error {
	return s.put(ctx, s.tables.Transactions, transactionItem{
		ID:          tx.ID,
		Account:     tx.Account,
		Date:        tx.Date.String(),
		Particulars: tx.Particulars,
		VoucherNo:   tx.VoucherNo,
		Type:        string(tx.Type),
		Amount:      tx.Amount.String(),
		CreatedAt:   tx.CreatedAt,
	})
}

// ListTransactions queries the account index, following pagination.
func (s *Store) ListTransactions(ctx context.Context, account string) ([]models.Transaction, error) {
	input := &dynamodb.QueryInput{
		TableName:                aws.String(s.tables.Transactions),
		IndexName:                aws.String(accountIndex),
		KeyConditionExpression:   aws.String("#account = :account"),
		ExpressionAttributeNames: map[string]string{"#account": "account"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":account": &types.AttributeValueMemberS{Value: account},
		},
	}
	var items []transactionItem
	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query transactions: %w", err)
		}
		var page []transactionItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal transactions: %w", err)
		}
		items = append(items, page...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	txs := make([]models.Transaction, 0, len(items))
	for _, item := range items {
		tx, err := item.model()
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", item.ID, err)
		}
		txs = append(txs, tx)
	}
	slices.SortStableFunc(txs, func(a, b models.Transaction) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return txs, nil
}

func (s *Store) put(ctx context.Context, table string, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put item into %s: %w", table, err)
	}
	return nil
}

// scan reads every item of table into out, a pointer to a slice of item structs.
func (s *Store) scan(ctx context.Context, table string, out any) error {
	input := &dynamodb.ScanInput{TableName: aws.String(table)}
	var all []map[string]types.AttributeValue
	for {
		page, err := s.client.Scan(ctx, input)
		if err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
		all = append(all, page.Items...)
		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}
	if err := attributevalue.UnmarshalListOfMaps(all, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", table, err)
	}
	return nil
}

func (i userItem) model() models.User {
	return models.User{ID: i.ID, Name: i.Name, Email: i.Email, PasswordHash: i.PasswordHash, CreatedAt: i.CreatedAt}
}

func (i daybookItem) model() (models.DaybookEntry, error) {
	on, err := date.Parse(i.Date)
	if err != nil {
		return models.DaybookEntry{}, err
	}
	e := models.DaybookEntry{
		ID:          i.ID,
		Date:        on,
		VoucherNo:   i.VoucherNo,
		Particulars: i.Particulars,
		ImageURL:    i.ImageURL,
		CreatedAt:   i.CreatedAt,
	}
	if e.Debit, err = parseAmount(i.Debit); err != nil {
		return models.DaybookEntry{}, err
	}
	if e.Credit, err = parseAmount(i.Credit); err != nil {
		return models.DaybookEntry{}, err
	}
	if e.Balance, err = parseAmount(i.Balance); err != nil {
		return models.DaybookEntry{}, err
	}
	return e, nil
}

func (i transactionItem) model() (models.Transaction, error) {
	on, err := date.Parse(i.Date)
	if err != nil {
		return models.Transaction{}, err
	}
	amount, err := parseAmount(i.Amount)
	if err != nil {
		return models.Transaction{}, err
	}
	return models.Transaction{
		ID:          i.ID,
		Account:     i.Account,
		Date:        on,
		Particulars: i.Particulars,
		VoucherNo:   i.VoucherNo,
		Type:        models.EntryType(i.Type),
		Amount:      amount,
		CreatedAt:   i.CreatedAt,
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
