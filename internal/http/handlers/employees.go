package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/hongminglow/erp-api/internal/date"
	"github.com/hongminglow/erp-api/internal/events"
	"github.com/hongminglow/erp-api/internal/http/respond"
	"github.com/hongminglow/erp-api/internal/models"
	"github.com/hongminglow/erp-api/internal/models/dto"
)

// EmployeeHandler serves the employee register.
type EmployeeHandler struct {
	store  EmployeeRegistry
	events events.Publisher
	today  func() date.Date
}

func NewEmployeeHandler(store EmployeeRegistry, publisher events.Publisher) *EmployeeHandler {
	return &EmployeeHandler{store: store, events: publisher, today: date.Today}
}

func (h *EmployeeHandler) Register(r *mux.Router) {
	r.HandleFunc("/employees", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/employees", h.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/employees/{id}", h.handleDelete).Methods(http.MethodDelete)
}

// handleList re-derives every status against today; stored statuses go stale.
func (h *EmployeeHandler) handleList(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	employees := h.store.ListEmployees(r.Context())
	out := make([]models.Employee, 0, len(employees))
	for _, e := range employees {
		out = append(out, e.WithStatus(today))
	}
	respond.JSON(w, http.StatusOK, respond.Fields{"employees": out})
}

func (h *EmployeeHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !requireFields(w, "name", req.Name, "position", req.Position, "expiry_date", req.ExpiryDate) {
		return
	}
	expiry, ok := parseDateField(w, "expiry_date", req.ExpiryDate)
	if !ok {
		return
	}

	employee := models.Employee{
		Name:       strings.TrimSpace(req.Name),
		Position:   strings.TrimSpace(req.Position),
		Department: strings.TrimSpace(req.Department),
		ExpiryDate: expiry,
		Status:     models.EmployeeStatusOn(expiry, h.today()),
	}
	created, err := h.store.CreateEmployee(r.Context(), employee)
	if err != nil {
		writeStoreError(w, "create employee", err)
		return
	}
	publish(r.Context(), h.events, events.New(events.EmployeeCreated, created.ID, created))
	respond.JSON(w, http.StatusCreated, respond.Fields{"id": created.ID, "employee": created})
}

func (h *EmployeeHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.DeleteEmployee(r.Context(), id); err != nil {
		writeStoreError(w, "delete employee", err)
		return
	}
	publish(r.Context(), h.events, events.New(events.EmployeeDeleted, id, map[string]string{"id": id}))
	respond.JSON(w, http.StatusOK, respond.Fields{"message": "Employee deleted"})
}
