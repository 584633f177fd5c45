package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAppointment() *Appointment {
	return &Appointment{
		ID:              uuid.New(),
		TenantID:        "tenant-a",
		BranchID:        uuid.New(),
		ServiceID:       uuid.New(),
		EmployeeID:      uuid.New(),
		ClientID:        uuid.New(),
		Date:            time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		StartMinute:     600,
		DurationMinutes: 60,
		TotalSessions:   1,
		StartsAt:        time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC),
		Status:          StatusConfirmed,
	}
}

func TestPostgresRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPostgresRepositoryWithPool(mock)
	appt := testAppointment()
	sessions := expandSessions(appt.ID, 2)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(appt.ID, appt.TenantID, appt.BranchID, appt.ServiceID, appt.EmployeeID, appt.ClientID,
			appt.Date, appt.StartMinute, appt.DurationMinutes, appt.TotalSessions, appt.StartsAt, appt.Status).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))
	for _, s := range sessions {
		mock.ExpectExec("INSERT INTO appointment_sessions").
			WithArgs(s.ID, appt.ID, s.Number, s.Status).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), appt, sessions))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Create_ExclusionViolationMapsToSlotTaken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPostgresRepositoryWithPool(mock)
	appt := testAppointment()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: exclusionViolation, ConstraintName: "appointments_no_overlap"})
	mock.ExpectRollback()

	err = repo.Create(context.Background(), appt, expandSessions(appt.ID, 1))
	assert.ErrorIs(t, err, ErrSlotTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Create_OtherErrorWrapped(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPostgresRepositoryWithPool(mock)
	appt := testAppointment()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = repo.Create(context.Background(), appt, nil)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "insert appointment", pe.Op)
}

func TestPostgresRepository_Cancel_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPostgresRepositoryWithPool(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE appointments").
		WithArgs(StatusCancelled, id, "tenant-a", StatusConfirmed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT status FROM appointments").
		WithArgs(id, "tenant-a").
		WillReturnError(pgx.ErrNoRows)

	err = repo.Cancel(context.Background(), "tenant-a", id)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestPostgresRepository_Cancel_AlreadyCancelled(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPostgresRepositoryWithPool(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE appointments").
		WithArgs(StatusCancelled, id, "tenant-a", StatusConfirmed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT status FROM appointments").
		WithArgs(id, "tenant-a").
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(StatusCancelled))

	err = repo.Cancel(context.Background(), "tenant-a", id)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}
