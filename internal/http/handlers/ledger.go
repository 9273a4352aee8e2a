package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/hongminglow/erp-api/internal/events"
	"github.com/hongminglow/erp-api/internal/http/respond"
	"github.com/hongminglow/erp-api/internal/ledger"
	"github.com/hongminglow/erp-api/internal/models"
	"github.com/hongminglow/erp-api/internal/models/dto"
)

// LedgerHandler serves per-account statements and postings.
type LedgerHandler struct {
	store    TransactionLedger
	currency string
	events   events.Publisher
}

func NewLedgerHandler(store TransactionLedger, currency string, publisher events.Publisher) *LedgerHandler {
	return &LedgerHandler{store: store, currency: currency, events: publisher}
}

func (h *LedgerHandler) Register(r *mux.Router) {
	r.HandleFunc("/ledger/accounts", h.handleAccounts).Methods(http.MethodGet)
	r.HandleFunc("/ledger/{account}", h.handleStatement).Methods(http.MethodGet)
	r.HandleFunc("/ledger/{account}/transactions", h.handlePost).Methods(http.MethodPost)
}

func (h *LedgerHandler) handleAccounts(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, respond.Fields{"accounts": ledger.Accounts})
}

func (h *LedgerHandler) account(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := mux.Vars(r)["account"]
	if !ledger.IsAccount(name) {
		respond.Error(w, http.StatusNotFound, "unknown account: "+name)
		return "", false
	}
	return name, true
}

func (h *LedgerHandler) handleStatement(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}
	st := ledger.BuildStatement(account, h.store.ListTransactions(r.Context(), account))
	respond.JSON(w, http.StatusOK, respond.Fields{
		"statement":       st,
		"closing_display": ledger.FormatBalance(st.Closing, h.currency),
		"currency":        h.currency,
	})
}

func (h *LedgerHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}
	var req dto.PostTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !requireFields(w, "date", req.Date, "particulars", req.Particulars, "type", req.Type) {
		return
	}
	on, ok := parseDateField(w, "date", req.Date)
	if !ok {
		return
	}
	entryType, err := models.ParseEntryType(req.Type)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "type must be Debit or Credit")
		return
	}
	if !req.Amount.IsPositive() {
		respond.Error(w, http.StatusBadRequest, "amount must be greater than zero")
		return
	}

	created, err := h.store.CreateTransaction(r.Context(), models.Transaction{
		Account:     account,
		Date:        on,
		Particulars: strings.TrimSpace(req.Particulars),
		VoucherNo:   strings.TrimSpace(req.VoucherNo),
		Type:        entryType,
		Amount:      req.Amount,
	})
	if err != nil {
		writeStoreError(w, "post transaction", err)
		return
	}
	publish(r.Context(), h.events, events.New(events.LedgerPosted, created.ID, created))
	respond.JSON(w, http.StatusCreated, respond.Fields{"id": created.ID, "transaction": created})
}
