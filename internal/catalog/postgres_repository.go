package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores catalog records in the relational database.
type PostgresRepository struct {
	db pgxQuerier
}

// pgxQuerier is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(db pgxQuerier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateBranch inserts a new branch row.
func (r *PostgresRepository) CreateBranch(ctx context.Context, branch *Branch) error {
	if branch.ID == uuid.Nil {
		branch.ID = uuid.New()
	}
	query := `
		INSERT INTO branches (id, tenant_id, name, address, service_ids)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query,
		branch.ID,
		branch.TenantID,
		branch.Name,
		branch.Address,
		branch.ServiceIDs,
	).Scan(&branch.CreatedAt); err != nil {
		return fmt.Errorf("catalog: insert branch: %w", err)
	}
	return nil
}

// GetBranch fetches a branch scoped to the tenant.
func (r *PostgresRepository) GetBranch(ctx context.Context, tenantID string, id uuid.UUID) (*Branch, error) {
	query := `
		SELECT id, tenant_id, name, address, service_ids, created_at
		FROM branches
		WHERE id = $1 AND tenant_id = $2
	`
	var branch Branch
	if err := r.db.QueryRow(ctx, query, id, tenantID).Scan(
		&branch.ID,
		&branch.TenantID,
		&branch.Name,
		&branch.Address,
		&branch.ServiceIDs,
		&branch.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBranchNotFound
		}
		return nil, fmt.Errorf("catalog: select branch: %w", err)
	}
	return &branch, nil
}

// ListBranches returns every branch for the tenant.
func (r *PostgresRepository) ListBranches(ctx context.Context, tenantID string) ([]*Branch, error) {
	query := `
		SELECT id, tenant_id, name, address, service_ids, created_at
		FROM branches
		WHERE tenant_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list branches: %w", err)
	}
	defer rows.Close()

	var out []*Branch
	for rows.Next() {
		var branch Branch
		if err := rows.Scan(&branch.ID, &branch.TenantID, &branch.Name, &branch.Address, &branch.ServiceIDs, &branch.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan branch: %w", err)
		}
		out = append(out, &branch)
	}
	return out, rows.Err()
}

// CreateService inserts a new service row.
func (r *PostgresRepository) CreateService(ctx context.Context, svc *Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	query := `
		INSERT INTO services (id, tenant_id, name, duration_minutes, total_sessions, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query,
		svc.ID,
		svc.TenantID,
		svc.Name,
		svc.DurationMinutes,
		svc.TotalSessions,
		svc.Active,
	).Scan(&svc.CreatedAt); err != nil {
		return fmt.Errorf("catalog: insert service: %w", err)
	}
	return nil
}

// GetService fetches a service scoped to the tenant.
func (r *PostgresRepository) GetService(ctx context.Context, tenantID string, id uuid.UUID) (*Service, error) {
	query := `
		SELECT id, tenant_id, name, duration_minutes, total_sessions, active, created_at
		FROM services
		WHERE id = $1 AND tenant_id = $2
	`
	var svc Service
	if err := r.db.QueryRow(ctx, query, id, tenantID).Scan(
		&svc.ID,
		&svc.TenantID,
		&svc.Name,
		&svc.DurationMinutes,
		&svc.TotalSessions,
		&svc.Active,
		&svc.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("catalog: select service: %w", err)
	}
	return &svc, nil
}

// ListServices returns every service for the tenant.
func (r *PostgresRepository) ListServices(ctx context.Context, tenantID string) ([]*Service, error) {
	query := `
		SELECT id, tenant_id, name, duration_minutes, total_sessions, active, created_at
		FROM services
		WHERE tenant_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list services: %w", err)
	}
	defer rows.Close()

	var out []*Service
	for rows.Next() {
		var svc Service
		if err := rows.Scan(&svc.ID, &svc.TenantID, &svc.Name, &svc.DurationMinutes, &svc.TotalSessions, &svc.Active, &svc.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan service: %w", err)
		}
		out = append(out, &svc)
	}
	return out, rows.Err()
}

// CreateEmployee inserts a new employee row. The weekly schedule is stored
// as JSONB.
func (r *PostgresRepository) CreateEmployee(ctx context.Context, emp *Employee) error {
	if emp.ID == uuid.Nil {
		emp.ID = uuid.New()
	}
	weekly, err := json.Marshal(emp.Weekly)
	if err != nil {
		return fmt.Errorf("catalog: marshal weekly schedule: %w", err)
	}
	query := `
		INSERT INTO employees (id, tenant_id, branch_id, name, active, weekly_schedule, service_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query,
		emp.ID,
		emp.TenantID,
		emp.BranchID,
		emp.Name,
		emp.Active,
		weekly,
		emp.ServiceIDs,
	).Scan(&emp.CreatedAt); err != nil {
		return fmt.Errorf("catalog: insert employee: %w", err)
	}
	return nil
}

// GetEmployee fetches an employee scoped to the tenant.
func (r *PostgresRepository) GetEmployee(ctx context.Context, tenantID string, id uuid.UUID) (*Employee, error) {
	query := `
		SELECT id, tenant_id, branch_id, name, active, weekly_schedule, service_ids, created_at
		FROM employees
		WHERE id = $1 AND tenant_id = $2
	`
	emp, err := scanEmployee(r.db.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("catalog: select employee: %w", err)
	}
	return emp, nil
}

// ListEmployeesByBranch returns the employees of one branch.
func (r *PostgresRepository) ListEmployeesByBranch(ctx context.Context, tenantID string, branchID uuid.UUID) ([]*Employee, error) {
	query := `
		SELECT id, tenant_id, branch_id, name, active, weekly_schedule, service_ids, created_at
		FROM employees
		WHERE tenant_id = $1 AND branch_id = $2
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tenantID, branchID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list employees: %w", err)
	}
	defer rows.Close()

	var out []*Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan employee: %w", err)
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func scanEmployee(row pgx.Row) (*Employee, error) {
	var emp Employee
	var weekly []byte
	if err := row.Scan(
		&emp.ID,
		&emp.TenantID,
		&emp.BranchID,
		&emp.Name,
		&emp.Active,
		&weekly,
		&emp.ServiceIDs,
		&emp.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(weekly) > 0 {
		if err := json.Unmarshal(weekly, &emp.Weekly); err != nil {
			return nil, fmt.Errorf("unmarshal weekly schedule: %w", err)
		}
	}
	return &emp, nil
}

// CreateClient inserts a new client row.
func (r *PostgresRepository) CreateClient(ctx context.Context, client *Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	query := `
		INSERT INTO clients (id, tenant_id, name, phone, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query,
		client.ID,
		client.TenantID,
		client.Name,
		client.Phone,
		client.Email,
	).Scan(&client.CreatedAt); err != nil {
		return fmt.Errorf("catalog: insert client: %w", err)
	}
	return nil
}

// GetClient fetches a client scoped to the tenant.
func (r *PostgresRepository) GetClient(ctx context.Context, tenantID string, id uuid.UUID) (*Client, error) {
	query := `
		SELECT id, tenant_id, name, phone, email, created_at
		FROM clients
		WHERE id = $1 AND tenant_id = $2
	`
	var client Client
	if err := r.db.QueryRow(ctx, query, id, tenantID).Scan(
		&client.ID,
		&client.TenantID,
		&client.Name,
		&client.Phone,
		&client.Email,
		&client.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("catalog: select client: %w", err)
	}
	return &client, nil
}

// UpsertScheduleException stores or replaces the override for (employee, date).
func (r *PostgresRepository) UpsertScheduleException(ctx context.Context, exc *ScheduleException) error {
	if err := exc.Validate(); err != nil {
		return err
	}
	ranges, err := json.Marshal(exc.Ranges)
	if err != nil {
		return fmt.Errorf("catalog: marshal exception ranges: %w", err)
	}
	query := `
		INSERT INTO schedule_exceptions (tenant_id, employee_id, date, type, ranges)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, employee_id, date)
		DO UPDATE SET type = EXCLUDED.type, ranges = EXCLUDED.ranges
	`
	if _, err := r.db.Exec(ctx, query,
		exc.TenantID,
		exc.EmployeeID,
		exc.Date,
		string(exc.Type),
		ranges,
	); err != nil {
		return fmt.Errorf("catalog: upsert exception: %w", err)
	}
	return nil
}

// GetScheduleException fetches the override for (employee, date), if any.
func (r *PostgresRepository) GetScheduleException(ctx context.Context, tenantID string, employeeID uuid.UUID, date time.Time) (*ScheduleException, error) {
	query := `
		SELECT tenant_id, employee_id, date, type, ranges
		FROM schedule_exceptions
		WHERE tenant_id = $1 AND employee_id = $2 AND date = $3
	`
	var exc ScheduleException
	var excType string
	var ranges []byte
	if err := r.db.QueryRow(ctx, query, tenantID, employeeID, date).Scan(
		&exc.TenantID,
		&exc.EmployeeID,
		&exc.Date,
		&excType,
		&ranges,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExceptionNotFound
		}
		return nil, fmt.Errorf("catalog: select exception: %w", err)
	}
	exc.Type = ExceptionType(excType)
	if len(ranges) > 0 {
		if err := json.Unmarshal(ranges, &exc.Ranges); err != nil {
			return nil, fmt.Errorf("catalog: unmarshal exception ranges: %w", err)
		}
	}
	return &exc, nil
}

var _ Repository = (*PostgresRepository)(nil)
