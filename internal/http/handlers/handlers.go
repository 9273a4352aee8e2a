package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hongminglow/erp-api/internal/date"
	"github.com/hongminglow/erp-api/internal/events"
	"github.com/hongminglow/erp-api/internal/http/respond"
	"github.com/hongminglow/erp-api/internal/middleware"
	"github.com/hongminglow/erp-api/internal/models"
	"github.com/hongminglow/erp-api/internal/storage"
)

// UserDirectory looks up and registers users.
type UserDirectory interface {
	FindUserByEmail(ctx context.Context, email string) (models.User, bool)
	CreateUser(ctx context.Context, name, email, passwordHash string) (string, error)
}

// EmployeeRegistry stores employee records.
type EmployeeRegistry interface {
	ListEmployees(ctx context.Context) []models.Employee
	CreateEmployee(ctx context.Context, e models.Employee) (models.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

// DaybookJournal stores day-book entries.
type DaybookJournal interface {
	ListDaybook(ctx context.Context) []models.DaybookEntry
	CreateDaybookEntry(ctx context.Context, e models.DaybookEntry) (models.DaybookEntry, error)
}

// TransactionLedger stores account postings.
type TransactionLedger interface {
	ListTransactions(ctx context.Context, account string) []models.Transaction
	CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error)
}

const publishTimeout = 2 * time.Second

// publish emits e, attributed to the authenticated user when there is one.
// Broker failures are logged only.
func publish(ctx context.Context, p events.Publisher, e events.Event) {
	if p == nil {
		return
	}
	if claims, ok := middleware.ClaimsFrom(ctx); ok {
		e.Actor = claims.Subject
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, e); err != nil {
		log.Printf("publish %s event failed: %v", e.Type, err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

// requireFields answers 400 naming every blank field. fields alternates name, value.
func requireFields(w http.ResponseWriter, fields ...string) bool {
	var missing []string
	for i := 0; i+1 < len(fields); i += 2 {
		if strings.TrimSpace(fields[i+1]) == "" {
			missing = append(missing, fields[i])
		}
	}
	if len(missing) > 0 {
		respond.Error(w, http.StatusBadRequest, "missing required fields: "+strings.Join(missing, ", "))
		return false
	}
	return true
}

func writeStoreError(w http.ResponseWriter, op string, err error) {
	log.Printf("%s failed: %v", op, err)
	if errors.Is(err, storage.ErrUnavailable) {
		respond.Error(w, http.StatusServiceUnavailable, "storage is unavailable, try again later")
		return
	}
	respond.Error(w, http.StatusInternalServerError, "failed to "+op)
}

func parseDateField(w http.ResponseWriter, name, value string) (date.Date, bool) {
	d, err := date.Parse(value)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid "+name+": expected YYYY-MM-DD")
		return date.Date{}, false
	}
	return d, true
}
