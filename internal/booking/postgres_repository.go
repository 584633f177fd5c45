package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reservly/booking-platform/internal/scheduling"
)

// Postgres SQLSTATE raised by the appointments exclusion constraint.
const exclusionViolation = "23P01"

// pgxPool is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type pgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database. The
// schema carries an exclusion constraint over (tenant, employee, date,
// minute range) for confirmed rows, so overlapping inserts lose the race
// inside the database rather than in application code.
type PostgresRepository struct {
	db pgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("booking: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithPool(db pgxPool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the appointment and its sessions in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, appt *Appointment, sessions []*Session) error {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return &PersistenceError{Op: "begin create appointment", Err: err}
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO appointments
			(id, tenant_id, branch_id, service_id, employee_id, client_id,
			 date, start_minute, duration_minutes, total_sessions, starts_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, query,
		appt.ID,
		appt.TenantID,
		appt.BranchID,
		appt.ServiceID,
		appt.EmployeeID,
		appt.ClientID,
		appt.Date,
		appt.StartMinute,
		appt.DurationMinutes,
		appt.TotalSessions,
		appt.StartsAt,
		appt.Status,
	).Scan(&appt.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
			return ErrSlotTaken
		}
		return &PersistenceError{Op: "insert appointment", Err: err}
	}

	for _, s := range sessions {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		s.AppointmentID = appt.ID
		_, err := tx.Exec(ctx,
			`INSERT INTO appointment_sessions (id, appointment_id, number, status) VALUES ($1, $2, $3, $4)`,
			s.ID, s.AppointmentID, s.Number, s.Status,
		)
		if err != nil {
			return &PersistenceError{Op: fmt.Sprintf("insert session %d", s.Number), Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &PersistenceError{Op: "commit create appointment", Err: err}
	}
	return nil
}

// Get retrieves an appointment with its sessions, scoped to the tenant.
func (r *PostgresRepository) Get(ctx context.Context, tenantID string, id uuid.UUID) (*Appointment, error) {
	query := `
		SELECT id, tenant_id, branch_id, service_id, employee_id, client_id,
		       date, start_minute, duration_minutes, total_sessions, starts_at, status, created_at
		FROM appointments
		WHERE id = $1 AND tenant_id = $2
	`
	var appt Appointment
	err := r.db.QueryRow(ctx, query, id, tenantID).Scan(
		&appt.ID,
		&appt.TenantID,
		&appt.BranchID,
		&appt.ServiceID,
		&appt.EmployeeID,
		&appt.ClientID,
		&appt.Date,
		&appt.StartMinute,
		&appt.DurationMinutes,
		&appt.TotalSessions,
		&appt.StartsAt,
		&appt.Status,
		&appt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, &PersistenceError{Op: "select appointment", Err: err}
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, appointment_id, number, status FROM appointment_sessions WHERE appointment_id = $1 ORDER BY number`,
		id,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "select sessions", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.AppointmentID, &s.Number, &s.Status); err != nil {
			return nil, &PersistenceError{Op: "scan session", Err: err}
		}
		appt.Sessions = append(appt.Sessions, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "iterate sessions", Err: err}
	}
	return &appt, nil
}

// Cancel marks the appointment cancelled, freeing its interval for new
// bookings.
func (r *PostgresRepository) Cancel(ctx context.Context, tenantID string, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE appointments SET status = $1 WHERE id = $2 AND tenant_id = $3 AND status = $4`,
		StatusCancelled, id, tenantID, StatusConfirmed,
	)
	if err != nil {
		return &PersistenceError{Op: "cancel appointment", Err: err}
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var status string
	err = r.db.QueryRow(ctx,
		`SELECT status FROM appointments WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAppointmentNotFound
		}
		return &PersistenceError{Op: "check appointment status", Err: err}
	}
	return ErrAlreadyCancelled
}

// BusyIntervals returns the confirmed intervals per employee on date.
func (r *PostgresRepository) BusyIntervals(ctx context.Context, tenantID string, employeeIDs []uuid.UUID, date time.Time) (map[uuid.UUID][]scheduling.Interval, error) {
	rows, err := r.db.Query(ctx, `
		SELECT employee_id, start_minute, duration_minutes
		FROM appointments
		WHERE tenant_id = $1 AND date = $2 AND status = $3 AND employee_id = ANY($4)
		ORDER BY start_minute
	`, tenantID, date, StatusConfirmed, employeeIDs)
	if err != nil {
		return nil, &PersistenceError{Op: "select busy intervals", Err: err}
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]scheduling.Interval)
	for rows.Next() {
		var empID uuid.UUID
		var start, duration int
		if err := rows.Scan(&empID, &start, &duration); err != nil {
			return nil, &PersistenceError{Op: "scan busy interval", Err: err}
		}
		out[empID] = append(out[empID], scheduling.Interval{Start: start, End: start + duration})
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "iterate busy intervals", Err: err}
	}
	return out, nil
}

var _ Repository = (*PostgresRepository)(nil)
