package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/hongminglow/erp-api/internal/attachments"
	"github.com/hongminglow/erp-api/internal/date"
	"github.com/hongminglow/erp-api/internal/events"
	"github.com/hongminglow/erp-api/internal/http/respond"
	"github.com/hongminglow/erp-api/internal/ledger"
	"github.com/hongminglow/erp-api/internal/models"
	"github.com/hongminglow/erp-api/internal/models/dto"
)

// DaybookHandler serves the day-book and its receipt uploads.
type DaybookHandler struct {
	store       DaybookJournal
	attachments *attachments.Store
	baseURL     string
	policy      ledger.BalancePolicy
	events      events.Publisher
}

func NewDaybookHandler(store DaybookJournal, files *attachments.Store, baseURL string, policy ledger.BalancePolicy, publisher events.Publisher) *DaybookHandler {
	return &DaybookHandler{store: store, attachments: files, baseURL: baseURL, policy: policy, events: publisher}
}

func (h *DaybookHandler) Register(r *mux.Router) {
	r.HandleFunc("/daybook", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/daybook", h.handlePost).Methods(http.MethodPost)
	r.HandleFunc("/daybook/upload", h.handleUpload).Methods(http.MethodPost)
}

// entries returns the stored day-book with balances as the policy sees them.
func (h *DaybookHandler) entries(r *http.Request) []models.DaybookEntry {
	list := h.store.ListDaybook(r.Context())
	if h.policy == ledger.RecomputeOnInsert {
		list = ledger.Recompute(list)
	}
	return list
}

func (h *DaybookHandler) handleList(w http.ResponseWriter, r *http.Request) {
	var on date.Date
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		d, ok := parseDateField(w, "date", raw)
		if !ok {
			return
		}
		on = d
	}
	all := h.entries(r)
	filtered := ledger.FilterDaybook(all, on, r.URL.Query().Get("q"))
	// Filters narrow the rows only; totals always cover the whole book.
	respond.JSON(w, http.StatusOK, respond.Fields{
		"entries":         filtered,
		"totals":          ledger.DaybookTotals(all),
		"filtered_totals": ledger.DaybookTotals(filtered),
	})
}

func (h *DaybookHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	var req dto.PostEntryRequest
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

	entry := ledger.NewEntry(on, strings.TrimSpace(req.VoucherNo), strings.TrimSpace(req.Particulars), entryType, req.Amount)
	entry.ImageURL = strings.TrimSpace(req.Image)
	entry = ledger.Post(h.entries(r), entry, h.policy)[0]

	created, err := h.store.CreateDaybookEntry(r.Context(), entry)
	if err != nil {
		writeStoreError(w, "post day-book entry", err)
		return
	}
	publish(r.Context(), h.events, events.New(events.DaybookPosted, created.ID, created))
	respond.JSON(w, http.StatusCreated, respond.Fields{"entry": created})
}

func (h *DaybookHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, attachments.MaxSize+1<<20)
	if err := r.ParseMultipartForm(attachments.MaxSize); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "no image uploaded")
		return
	}
	defer file.Close()

	name, err := h.attachments.Save(file)
	if err != nil {
		if errors.Is(err, attachments.ErrNotImage) {
			respond.Error(w, http.StatusBadRequest, "only image files are allowed")
			return
		}
		log.Printf("upload image failed: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to upload image")
		return
	}
	respond.JSON(w, http.StatusOK, respond.Fields{"imageUrl": attachments.URL(h.baseURL, name)})
}
