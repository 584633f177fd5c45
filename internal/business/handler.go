package business

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reservly/booking-platform/pkg/logging"
)

// Handler handles admin HTTP requests for business profiles.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a new profile handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// GetProfile handles GET /admin/tenants/{tenantID}/profile requests.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		http.Error(w, "missing tenant_id", http.StatusBadRequest)
		return
	}

	p, err := h.store.Get(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to get profile", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to get profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// PutProfile handles PUT /admin/tenants/{tenantID}/profile requests.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		http.Error(w, "missing tenant_id", http.StatusBadRequest)
		return
	}

	var p Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.logger.Error("failed to decode profile", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	p.TenantID = tenantID

	if err := h.store.Set(r.Context(), &p); err != nil {
		h.logger.Error("failed to save profile", "error", err, "tenant_id", tenantID)
		http.Error(w, "failed to save profile", http.StatusInternalServerError)
		return
	}

	h.logger.Info("business profile updated", "tenant_id", tenantID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}
