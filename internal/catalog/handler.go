package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reservly/booking-platform/pkg/logging"
)

// Handler handles admin HTTP requests for catalog records.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new catalog handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// CreateBranch handles POST /admin/tenants/{tenantID}/branches requests.
func (h *Handler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		http.Error(w, "missing tenant_id", http.StatusBadRequest)
		return
	}

	var branch Branch
	if err := json.NewDecoder(r.Body).Decode(&branch); err != nil {
		h.logger.Error("failed to decode branch", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	branch.TenantID = tenantID

	if err := h.repo.CreateBranch(r.Context(), &branch); err != nil {
		h.logger.Error("failed to create branch", "error", err, "tenant_id", tenantID)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("branch created", "id", branch.ID, "tenant_id", tenantID)
	writeJSON(w, http.StatusCreated, branch)
}

// ListBranches handles GET /admin/tenants/{tenantID}/branches requests.
func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		http.Error(w, "missing tenant_id", http.StatusBadRequest)
		return
	}

	branches, err := h.repo.ListBranches(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list branches", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to list branches", http.StatusInternalServerError)
		return
	}
	if branches == nil {
		branches = []*Branch{}
	}
	writeJSON(w, http.StatusOK, branches)
}

// CreateService handles POST /admin/tenants/{tenantID}/services requests.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		http.Error(w, "missing tenant_id", http.StatusBadRequest)
		return
	}

	var svc Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		h.logger.Error("failed to decode service", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	svc.TenantID = tenantID

	if err := h.repo.CreateService(r.Context(), &svc); err != nil {
		h.logger.Error("failed to create service", "error", err, "tenant_id", tenantID)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("service created", "id", svc.ID, "tenant_id", tenantID)
	writeJSON(w, http.StatusCreated, svc)
}

// ListServices handles GET /admin/tenants/{tenantID}/services requests.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		http.Error(w, "missing tenant_id", http.StatusBadRequest)
		return
	}

	services, err := h.repo.ListServices(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list services", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}
	if services == nil {
		services = []*Service{}
	}
	writeJSON(w, http.StatusOK, services)
}

// CreateEmployee handles POST /admin/tenants/{tenantID}/employees requests.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		http.Error(w, "missing tenant_id", http.StatusBadRequest)
		return
	}

	var emp Employee
	if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
		h.logger.Error("failed to decode employee", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	emp.TenantID = tenantID

	if err := h.repo.CreateEmployee(r.Context(), &emp); err != nil {
		h.logger.Error("failed to create employee", "error", err, "tenant_id", tenantID)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("employee created", "id", emp.ID, "tenant_id", tenantID)
	writeJSON(w, http.StatusCreated, emp)
}

// ListEmployees handles GET /admin/tenants/{tenantID}/branches/{branchID}/employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		http.Error(w, "missing tenant_id", http.StatusBadRequest)
		return
	}
	branchID, err := uuid.Parse(chi.URLParam(r, "branchID"))
	if err != nil {
		http.Error(w, "invalid branch_id", http.StatusBadRequest)
		return
	}

	employees, err := h.repo.ListEmployeesByBranch(r.Context(), tenantID, branchID)
	if err != nil {
		h.logger.Error("failed to list employees", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to list employees", http.StatusInternalServerError)
		return
	}
	if employees == nil {
		employees = []*Employee{}
	}
	writeJSON(w, http.StatusOK, employees)
}

// CreateClient handles POST /admin/tenants/{tenantID}/clients requests.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		http.Error(w, "missing tenant_id", http.StatusBadRequest)
		return
	}

	var client Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		h.logger.Error("failed to decode client", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	client.TenantID = tenantID

	if err := h.repo.CreateClient(r.Context(), &client); err != nil {
		h.logger.Error("failed to create client", "error", err, "tenant_id", tenantID)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("client created", "id", client.ID, "tenant_id", tenantID)
	writeJSON(w, http.StatusCreated, client)
}

// UpsertException handles PUT /admin/tenants/{tenantID}/employees/{employeeID}/exceptions/{date}.
func (h *Handler) UpsertException(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		http.Error(w, "missing tenant_id", http.StatusBadRequest)
		return
	}
	employeeID, err := uuid.Parse(chi.URLParam(r, "employeeID"))
	if err != nil {
		http.Error(w, "invalid employee_id", http.StatusBadRequest)
		return
	}
	date, err := ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	var exc ScheduleException
	if err := json.NewDecoder(r.Body).Decode(&exc); err != nil {
		h.logger.Error("failed to decode exception", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	exc.TenantID = tenantID
	exc.EmployeeID = employeeID
	exc.Date = date

	if _, err := h.repo.GetEmployee(r.Context(), tenantID, employeeID); err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			http.Error(w, "employee not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load employee", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to load employee", http.StatusInternalServerError)
		return
	}

	if err := h.repo.UpsertScheduleException(r.Context(), &exc); err != nil {
		h.logger.Error("failed to upsert exception", "error", err, "tenant_id", tenantID)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("schedule exception stored",
		"tenant_id", tenantID,
		"employee_id", employeeID,
		"date", DateKey(date),
		"type", exc.Type,
	)
	writeJSON(w, http.StatusOK, exc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
