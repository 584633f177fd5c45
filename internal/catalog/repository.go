package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines tenant-scoped storage for catalog records.
type Repository interface {
	CreateBranch(ctx context.Context, branch *Branch) error
	GetBranch(ctx context.Context, tenantID string, id uuid.UUID) (*Branch, error)
	ListBranches(ctx context.Context, tenantID string) ([]*Branch, error)

	CreateService(ctx context.Context, svc *Service) error
	GetService(ctx context.Context, tenantID string, id uuid.UUID) (*Service, error)
	ListServices(ctx context.Context, tenantID string) ([]*Service, error)

	CreateEmployee(ctx context.Context, emp *Employee) error
	GetEmployee(ctx context.Context, tenantID string, id uuid.UUID) (*Employee, error)
	ListEmployeesByBranch(ctx context.Context, tenantID string, branchID uuid.UUID) ([]*Employee, error)

	CreateClient(ctx context.Context, client *Client) error
	GetClient(ctx context.Context, tenantID string, id uuid.UUID) (*Client, error)

	UpsertScheduleException(ctx context.Context, exc *ScheduleException) error
	GetScheduleException(ctx context.Context, tenantID string, employeeID uuid.UUID, date time.Time) (*ScheduleException, error)
}

// InMemoryRepository is a map-backed Repository used in tests and local runs.
type InMemoryRepository struct {
	mu         sync.RWMutex
	branches   map[uuid.UUID]*Branch
	services   map[uuid.UUID]*Service
	employees  map[uuid.UUID]*Employee
	clients    map[uuid.UUID]*Client
	exceptions map[string]*ScheduleException
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		branches:   make(map[uuid.UUID]*Branch),
		services:   make(map[uuid.UUID]*Service),
		employees:  make(map[uuid.UUID]*Employee),
		clients:    make(map[uuid.UUID]*Client),
		exceptions: make(map[string]*ScheduleException),
	}
}

func exceptionKey(tenantID string, employeeID uuid.UUID, date time.Time) string {
	return tenantID + "/" + employeeID.String() + "/" + DateKey(date)
}

// CreateBranch stores a branch, assigning an id when absent.
func (r *InMemoryRepository) CreateBranch(ctx context.Context, branch *Branch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if branch.ID == uuid.Nil {
		branch.ID = uuid.New()
	}
	if branch.CreatedAt.IsZero() {
		branch.CreatedAt = time.Now().UTC()
	}
	copied := *branch
	r.branches[branch.ID] = &copied
	return nil
}

// GetBranch retrieves a branch scoped to the tenant.
func (r *InMemoryRepository) GetBranch(ctx context.Context, tenantID string, id uuid.UUID) (*Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	branch, ok := r.branches[id]
	if !ok || branch.TenantID != tenantID {
		return nil, ErrBranchNotFound
	}
	copied := *branch
	return &copied, nil
}

// ListBranches returns every branch for the tenant.
func (r *InMemoryRepository) ListBranches(ctx context.Context, tenantID string) ([]*Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Branch
	for _, branch := range r.branches {
		if branch.TenantID == tenantID {
			copied := *branch
			out = append(out, &copied)
		}
	}
	return out, nil
}

// CreateService stores a service after validation.
func (r *InMemoryRepository) CreateService(ctx context.Context, svc *Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	if svc.CreatedAt.IsZero() {
		svc.CreatedAt = time.Now().UTC()
	}
	copied := *svc
	r.services[svc.ID] = &copied
	return nil
}

// GetService retrieves a service scoped to the tenant.
func (r *InMemoryRepository) GetService(ctx context.Context, tenantID string, id uuid.UUID) (*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[id]
	if !ok || svc.TenantID != tenantID {
		return nil, ErrServiceNotFound
	}
	copied := *svc
	return &copied, nil
}

// ListServices returns every service for the tenant.
func (r *InMemoryRepository) ListServices(ctx context.Context, tenantID string) ([]*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Service
	for _, svc := range r.services {
		if svc.TenantID == tenantID {
			copied := *svc
			out = append(out, &copied)
		}
	}
	return out, nil
}

// CreateEmployee stores an employee.
func (r *InMemoryRepository) CreateEmployee(ctx context.Context, emp *Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if emp.ID == uuid.Nil {
		emp.ID = uuid.New()
	}
	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = time.Now().UTC()
	}
	copied := *emp
	r.employees[emp.ID] = &copied
	return nil
}

// GetEmployee retrieves an employee scoped to the tenant.
func (r *InMemoryRepository) GetEmployee(ctx context.Context, tenantID string, id uuid.UUID) (*Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	emp, ok := r.employees[id]
	if !ok || emp.TenantID != tenantID {
		return nil, ErrEmployeeNotFound
	}
	copied := *emp
	return &copied, nil
}

// ListEmployeesByBranch returns the employees of one branch.
func (r *InMemoryRepository) ListEmployeesByBranch(ctx context.Context, tenantID string, branchID uuid.UUID) ([]*Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Employee
	for _, emp := range r.employees {
		if emp.TenantID == tenantID && emp.BranchID == branchID {
			copied := *emp
			out = append(out, &copied)
		}
	}
	return out, nil
}

// CreateClient stores a client.
func (r *InMemoryRepository) CreateClient(ctx context.Context, client *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	if client.CreatedAt.IsZero() {
		client.CreatedAt = time.Now().UTC()
	}
	copied := *client
	r.clients[client.ID] = &copied
	return nil
}

// GetClient retrieves a client scoped to the tenant.
func (r *InMemoryRepository) GetClient(ctx context.Context, tenantID string, id uuid.UUID) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[id]
	if !ok || client.TenantID != tenantID {
		return nil, ErrClientNotFound
	}
	copied := *client
	return &copied, nil
}

// UpsertScheduleException stores or replaces the override for (employee, date).
func (r *InMemoryRepository) UpsertScheduleException(ctx context.Context, exc *ScheduleException) error {
	if err := exc.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *exc
	r.exceptions[exceptionKey(exc.TenantID, exc.EmployeeID, exc.Date)] = &copied
	return nil
}

// GetScheduleException retrieves the override for (employee, date), if any.
func (r *InMemoryRepository) GetScheduleException(ctx context.Context, tenantID string, employeeID uuid.UUID, date time.Time) (*ScheduleException, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exc, ok := r.exceptions[exceptionKey(tenantID, employeeID, date)]
	if !ok {
		return nil, ErrExceptionNotFound
	}
	copied := *exc
	return &copied, nil
}

var _ Repository = (*InMemoryRepository)(nil)
