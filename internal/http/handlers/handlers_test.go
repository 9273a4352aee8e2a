package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/erp-api/internal/attachments"
	"github.com/hongminglow/erp-api/internal/auth"
	"github.com/hongminglow/erp-api/internal/date"
	"github.com/hongminglow/erp-api/internal/events"
	"github.com/hongminglow/erp-api/internal/ledger"
	"github.com/hongminglow/erp-api/internal/middleware"
	"github.com/hongminglow/erp-api/internal/models"
	"github.com/hongminglow/erp-api/internal/storage/memory"
	"github.com/hongminglow/erp-api/internal/storage/replicated"
)

type recordingPublisher struct {
	types  []string
	actors []string
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.types = append(p.types, e.Type)
	p.actors = append(p.actors, e.Actor)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type testEnv struct {
	router    *mux.Router
	primary   *memory.Store
	secondary *memory.Store
	events    *recordingPublisher
	tokens    *auth.TokenManager
}

func newTestEnv(t *testing.T, policy ledger.BalancePolicy) *testEnv {
	t.Helper()
	env := &testEnv{
		router:    mux.NewRouter(),
		primary:   memory.New(),
		secondary: memory.New(),
		events:    &recordingPublisher{},
		tokens:    auth.NewTokenManager("test-secret", "erp-api", time.Hour),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := replicated.New(env.primary, env.secondary, replicated.DefaultPolicy(), logger)

	NewAuthHandler(store, env.tokens, env.events).Register(env.router)
	employees := NewEmployeeHandler(store, env.events)
	employees.today = func() date.Date { return date.MustParse("2026-01-15") }
	employees.Register(env.router)
	NewDaybookHandler(store, attachments.NewStore(t.TempDir()), "http://api.test", policy, env.events).Register(env.router)
	NewLedgerHandler(store, "USD", env.events).Register(env.router)
	NewHealthHandler(time.Now()).Register(env.router)
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, ledger.AppendOnly)

	rec, body := env.do(t, http.MethodPost, "/register", map[string]string{"name": "Admin User", "email": "Admin@Edmail.com", "password": "secret123"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])

	rec, body = env.do(t, http.MethodPost, "/register", map[string]string{"name": "Again", "email": "admin@edmail.com", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, body = env.do(t, http.MethodPost, "/login", map[string]string{"email": "admin@edmail.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := body["token"].(string)
	claims, err := env.tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@edmail.com", claims.Email)
	user := body["user"].(map[string]any)
	assert.Equal(t, "Admin User", user["name"])
	assert.NotContains(t, user, "password_hash")

	rec, body = env.do(t, http.MethodPost, "/login", map[string]string{"email": "admin@edmail.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid email or password", body["message"])

	rec, body = env.do(t, http.MethodPost, "/login", map[string]string{"email": "ghost@edmail.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid email or password", body["message"])

	assert.Equal(t, []string{events.UserRegistered}, env.events.types)
}

func TestLoginFailureLogOmitsEmail(t *testing.T) {
	env := newTestEnv(t, ledger.AppendOnly)
	var logs strings.Builder
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	rec, _ := env.do(t, http.MethodPost, "/login", map[string]string{"email": "ghost@edmail.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, logs.String(), "login failed")
	assert.NotContains(t, logs.String(), "ghost@edmail.com")
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t, ledger.AppendOnly)

	rec, body := env.do(t, http.MethodPost, "/register", map[string]string{"email": "a@b.c"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing required fields: name, password", body["message"])

	rec, _ = env.do(t, http.MethodPost, "/register", map[string]string{"name": "A", "email": "not-an-email", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginFallsBackToSecondary(t *testing.T) {
	env := newTestEnv(t, ledger.AppendOnly)
	hash, err := hashPassword("secret123")
	require.NoError(t, err)
	// Only the document store knows this user.
	require.NoError(t, env.secondary.CreateUser(context.Background(), models.User{ID: "u-1", Name: "Sam", Email: "sam@edmail.com", PasswordHash: hash}))

	rec, body := env.do(t, http.MethodPost, "/login", map[string]string{"email": "sam@edmail.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", body["user"].(map[string]any)["id"])
}

func TestEventsCarryAuthenticatedActor(t *testing.T) {
	env := newTestEnv(t, ledger.AppendOnly)
	h := middleware.RequireAuth(env.tokens, true)(env.router)
	token, err := env.tokens.Generate(models.User{ID: "u-42", Email: "admin@edmail.com"})
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]string{"name": "John Smith", "position": "Senior Developer", "expiry_date": "2026-12-31"})
	req := httptest.NewRequest(http.MethodPost, "/employees", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, []string{events.EmployeeCreated}, env.events.types)
	assert.Equal(t, []string{"u-42"}, env.events.actors)
}

func TestEmployeesLifecycle(t *testing.T) {
	env := newTestEnv(t, ledger.AppendOnly)

	rec, body := env.do(t, http.MethodPost, "/employees", map[string]string{"name": "John Smith"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing required fields: position, expiry_date", body["message"])

	rec, _ = env.do(t, http.MethodPost, "/employees", map[string]string{"name": "X", "position": "Y", "expiry_date": "soon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	seed := []map[string]string{
		{"name": "John Smith", "position": "Senior Developer", "department": "IT", "expiry_date": "2026-12-31"},
		{"name": "Sarah Jones", "position": "HR Manager", "department": "HR", "expiry_date": "2026-02-10"},
		{"name": "Mike Brown", "position": "Technician", "department": "Maintenance", "expiry_date": "2024-05-15"},
	}
	var ids []string
	for _, e := range seed {
		rec, body = env.do(t, http.MethodPost, "/employees", e)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		ids = append(ids, body["id"].(string))
	}

	rec, body = env.do(t, http.MethodGet, "/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := body["employees"].([]any)
	require.Len(t, list, 3)
	first, second, third := list[0].(map[string]any), list[1].(map[string]any), list[2].(map[string]any)
	assert.Equal(t, "Mike Brown", first["name"])
	assert.Equal(t, "Expired", first["status"])
	assert.Equal(t, "Expiring Soon", second["status"])
	assert.Equal(t, "Active", third["status"])

	rec, _ = env.do(t, http.MethodDelete, "/employees/"+ids[2], nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.do(t, http.MethodDelete, "/employees/does-not-exist", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, body = env.do(t, http.MethodGet, "/employees", nil)
	assert.Len(t, body["employees"].([]any), 2)
	assert.Contains(t, env.events.types, events.EmployeeDeleted)
}

func postEntry(t *testing.T, env *testEnv, on, particulars, typ, amount string) map[string]any {
	t.Helper()
	rec, body := env.do(t, http.MethodPost, "/daybook", map[string]any{
		"date": on, "voucher_no": "V-" + on, "particulars": particulars, "type": typ, "amount": json.Number(amount),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return body["entry"].(map[string]any)
}

func TestDaybookAppendOnly(t *testing.T) {
	env := newTestEnv(t, ledger.AppendOnly)

	assert.Equal(t, "7200", postEntry(t, env, "2026-01-13", "Sales", "Debit", "7200")["balance"])
	assert.Equal(t, "6000", postEntry(t, env, "2026-01-14", "Office rent", "Credit", "1200")["balance"])
	// Back-dated entries only see the current top balance.
	assert.Equal(t, "6500", postEntry(t, env, "2026-01-01", "Opening cash", "Debit", "500")["balance"])

	rec, body := env.do(t, http.MethodGet, "/daybook", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := body["entries"].([]any)
	require.Len(t, entries, 3)
	assert.Equal(t, "Opening cash", entries[0].(map[string]any)["particulars"])
	totals := body["totals"].(map[string]any)
	assert.Equal(t, "7700", totals["total_debit"])
	assert.Equal(t, "1200", totals["total_credit"])

	_, body = env.do(t, http.MethodGet, "/daybook?date=2026-01-14", nil)
	assert.Len(t, body["entries"].([]any), 1)
	_, body = env.do(t, http.MethodGet, "/daybook?q=sales", nil)
	assert.Len(t, body["entries"].([]any), 1)
	rec, _ = env.do(t, http.MethodGet, "/daybook?date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDaybookTotalsIgnoreFilters(t *testing.T) {
	env := newTestEnv(t, ledger.AppendOnly)
	postEntry(t, env, "2026-01-13", "Sales", "Debit", "7200")
	postEntry(t, env, "2026-01-14", "Office rent", "Credit", "1200")

	rec, body := env.do(t, http.MethodGet, "/daybook?date=2026-01-14", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["entries"].([]any), 1)

	totals := body["totals"].(map[string]any)
	assert.Equal(t, "7200", totals["total_debit"])
	assert.Equal(t, "1200", totals["total_credit"])
	assert.Equal(t, "6000", totals["net"])
	assert.Equal(t, "Dr", totals["side"])

	filtered := body["filtered_totals"].(map[string]any)
	assert.Equal(t, "0", filtered["total_debit"])
	assert.Equal(t, "1200", filtered["total_credit"])

	_, body = env.do(t, http.MethodGet, "/daybook?q=sales", nil)
	assert.Equal(t, "1200", body["totals"].(map[string]any)["total_credit"])
}

func TestDaybookRecompute(t *testing.T) {
	env := newTestEnv(t, ledger.RecomputeOnInsert)

	postEntry(t, env, "2026-01-13", "Sales", "Debit", "7200")
	postEntry(t, env, "2026-01-14", "Office rent", "Credit", "1200")
	assert.Equal(t, "500", postEntry(t, env, "2026-01-01", "Opening cash", "Debit", "500")["balance"])

	_, body := env.do(t, http.MethodGet, "/daybook", nil)
	entries := body["entries"].([]any)
	require.Len(t, entries, 3)
	assert.Equal(t, "6500", entries[1].(map[string]any)["balance"])
	assert.Equal(t, "7700", entries[2].(map[string]any)["balance"])
}

func TestDaybookValidation(t *testing.T) {
	env := newTestEnv(t, ledger.AppendOnly)

	rec, _ := env.do(t, http.MethodPost, "/daybook", map[string]any{"date": "2026-01-13", "particulars": "x", "type": "Debit", "amount": -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = env.do(t, http.MethodPost, "/daybook", map[string]any{"date": "2026-01-13", "particulars": "x", "type": "Transfer", "amount": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, body := env.do(t, http.MethodPost, "/daybook", map[string]any{"amount": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing required fields: date, particulars, type", body["message"])
}

func TestDaybookUpload(t *testing.T) {
	env := newTestEnv(t, ledger.AppendOnly)

	upload := func(field string, content []byte) (*httptest.ResponseRecorder, map[string]any) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile(field, "receipt.png")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/daybook/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		var out map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
		return rec, out
	}

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	rec, body := upload("image", png)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Regexp(t, `^http://api\.test/uploads/[0-9a-f-]+\.png$`, body["imageUrl"])

	rec, _ = upload("file", png)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = upload("image", []byte("plain text"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLedgerStatement(t *testing.T) {
	env := newTestEnv(t, ledger.AppendOnly)
	path := "/ledger/" + url.PathEscape("Cash Account")

	for _, tx := range []map[string]any{
		{"date": "2026-01-10", "particulars": "Rent paid", "type": "Credit", "amount": 5000},
		{"date": "2026-01-01", "particulars": "Capital introduced", "type": "Debit", "amount": 50000},
		{"date": "2026-01-05", "particulars": "Cash sales", "type": "Debit", "amount": 15000},
	} {
		rec, _ := env.do(t, http.MethodPost, path+"/transactions", tx)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec, body := env.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := body["statement"].(map[string]any)
	lines := st["transactions"].([]any)
	require.Len(t, lines, 3)
	var balances []any
	for _, l := range lines {
		balances = append(balances, l.(map[string]any)["balance"])
	}
	assert.Equal(t, []any{"50000", "65000", "60000"}, balances)
	assert.Equal(t, "65000", st["total_debit"])
	assert.Equal(t, "5000", st["total_credit"])
	assert.Equal(t, "60000", st["closing_balance"])
	assert.Equal(t, "Dr", st["side"])
	assert.Equal(t, "$60,000.00 Dr", body["closing_display"])

	rec, _ = env.do(t, http.MethodGet, "/ledger/Petty", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, body = env.do(t, http.MethodGet, "/ledger/accounts", nil)
	assert.Len(t, body["accounts"].([]any), len(ledger.Accounts))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, ledger.AppendOnly)
	rec, body := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}
