package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservly/booking-platform/pkg/logging"
)

func newCatalogTestRequest(method, target string, body []byte, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandler_CreateService(t *testing.T) {
	repo := NewInMemoryRepository()
	h := NewHandler(repo, logging.Default())

	body, _ := json.Marshal(map[string]any{
		"name":             "Laser Session",
		"duration_minutes": 45,
		"total_sessions":   6,
		"active":           true,
	})
	req := newCatalogTestRequest(http.MethodPost, "/admin/tenants/tenant-a/services", body,
		map[string]string{"tenantID": "tenant-a"})
	rec := httptest.NewRecorder()

	h.CreateService(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created Service
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "tenant-a", created.TenantID)
	assert.Equal(t, 6, created.TotalSessions)
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestHandler_CreateService_InvalidBody(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), logging.Default())

	req := newCatalogTestRequest(http.MethodPost, "/admin/tenants/tenant-a/services",
		[]byte("{not json"), map[string]string{"tenantID": "tenant-a"})
	rec := httptest.NewRecorder()

	h.CreateService(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ListServices_EmptyTenant(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), logging.Default())

	req := newCatalogTestRequest(http.MethodGet, "/admin/tenants/tenant-a/services", nil,
		map[string]string{"tenantID": "tenant-a"})
	rec := httptest.NewRecorder()

	h.ListServices(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandler_CreateClient(t *testing.T) {
	repo := NewInMemoryRepository()
	h := NewHandler(repo, logging.Default())

	body, _ := json.Marshal(map[string]any{
		"name":  "Marta Silva",
		"email": "marta@example.com",
		"phone": "+5511999990000",
	})
	req := newCatalogTestRequest(http.MethodPost, "/admin/tenants/tenant-a/clients", body,
		map[string]string{"tenantID": "tenant-a"})
	rec := httptest.NewRecorder()

	h.CreateClient(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created Client
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "tenant-a", created.TenantID)
	assert.NotEqual(t, uuid.Nil, created.ID)

	got, err := repo.GetClient(context.Background(), "tenant-a", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marta Silva", got.Name)
}

func TestHandler_UpsertException(t *testing.T) {
	repo := NewInMemoryRepository()
	h := NewHandler(repo, logging.Default())
	ctx := context.Background()

	emp := &Employee{TenantID: "tenant-a", BranchID: uuid.New(), Name: "Ana", Active: true}
	require.NoError(t, repo.CreateEmployee(ctx, emp))

	body, _ := json.Marshal(map[string]any{
		"type":   "special_hours",
		"ranges": []map[string]int{{"start": 600, "end": 840}},
	})
	req := newCatalogTestRequest(http.MethodPut,
		"/admin/tenants/tenant-a/employees/"+emp.ID.String()+"/exceptions/2026-09-07",
		body, map[string]string{
			"tenantID":   "tenant-a",
			"employeeID": emp.ID.String(),
			"date":       "2026-09-07",
		})
	rec := httptest.NewRecorder()

	h.UpsertException(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	date, _ := ParseDate("2026-09-07")
	got, err := repo.GetScheduleException(ctx, "tenant-a", emp.ID, date)
	require.NoError(t, err)
	assert.Equal(t, ExceptionSpecialHours, got.Type)
}

func TestHandler_UpsertException_UnknownEmployee(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), logging.Default())

	body, _ := json.Marshal(map[string]any{"type": "unavailable"})
	req := newCatalogTestRequest(http.MethodPut,
		"/admin/tenants/tenant-a/employees/x/exceptions/2026-09-07",
		body, map[string]string{
			"tenantID":   "tenant-a",
			"employeeID": uuid.NewString(),
			"date":       "2026-09-07",
		})
	rec := httptest.NewRecorder()

	h.UpsertException(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
