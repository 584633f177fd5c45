package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reservly/booking-platform/internal/catalog"
	"github.com/reservly/booking-platform/internal/scheduling"
	"github.com/reservly/booking-platform/internal/tenancy"
	"github.com/reservly/booking-platform/pkg/logging"
)

// Handler handles HTTP requests for availability and appointments.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates a new booking handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

type slotResponse struct {
	Start       string      `json:"start"`
	StartMinute int         `json:"start_minute"`
	EmployeeIDs []uuid.UUID `json:"employee_ids"`
}

type availabilityResponse struct {
	Date  string         `json:"date"`
	Slots []slotResponse `json:"slots"`
}

// GetAvailability handles GET /availability requests.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	branchID, err := uuid.Parse(q.Get("branch_id"))
	if err != nil {
		http.Error(w, "invalid branch_id", http.StatusBadRequest)
		return
	}
	serviceID, err := uuid.Parse(q.Get("service_id"))
	if err != nil {
		http.Error(w, "invalid service_id", http.StatusBadRequest)
		return
	}
	date, err := catalog.ParseDate(q.Get("date"))
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	slots, err := h.svc.Availability(r.Context(), tenantID, branchID, serviceID, date)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrServiceNotFound), errors.Is(err, catalog.ErrBranchNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error("availability failed", "error", err, "tenant_id", tenantID)
			http.Error(w, "failed to compute availability", http.StatusInternalServerError)
		}
		return
	}

	resp := availabilityResponse{
		Date:  catalog.DateKey(date),
		Slots: make([]slotResponse, 0, len(slots)),
	}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, slotResponse{
			Start:       scheduling.FormatMinute(s.StartMinute),
			StartMinute: s.StartMinute,
			EmployeeIDs: s.EmployeeIDs,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type bookRequestBody struct {
	BranchID    uuid.UUID  `json:"branch_id"`
	ServiceID   uuid.UUID  `json:"service_id"`
	EmployeeID  *uuid.UUID `json:"employee_id,omitempty"`
	ClientID    uuid.UUID  `json:"client_id"`
	Date        string     `json:"date"`
	StartMinute int        `json:"start_minute"`
}

// CreateAppointment handles POST /appointments requests.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}

	var body bookRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Error("failed to decode booking request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	date, err := catalog.ParseDate(body.Date)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	req := &BookRequest{
		TenantID:  tenantID,
		BranchID:  body.BranchID,
		ServiceID: body.ServiceID,
		ClientID:  body.ClientID,
		Date:      date,
		StartMin:  body.StartMinute,
	}
	if body.EmployeeID != nil {
		req.EmployeeID = *body.EmployeeID
	}

	appt, err := h.svc.Book(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrNoEmployeeAvailable):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "slot_taken"})
		case errors.Is(err, catalog.ErrServiceNotFound),
			errors.Is(err, catalog.ErrClientNotFound),
			errors.Is(err, catalog.ErrBranchNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			var pe *PersistenceError
			if errors.As(err, &pe) {
				h.logger.Error("booking persistence failed", "error", err, "tenant_id", tenantID)
				http.Error(w, "failed to book appointment", http.StatusInternalServerError)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	writeJSON(w, http.StatusCreated, appt)
}

// GetAppointment handles GET /appointments/{appointmentID} requests.
func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}

	appt, err := h.svc.Get(r.Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get appointment", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to get appointment", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// CancelAppointment handles DELETE /appointments/{appointmentID} requests.
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing tenant context", http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Cancel(r.Context(), tenantID, id); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to cancel appointment", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
