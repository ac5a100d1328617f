package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQuerier is the slice of pgxpool.Pool the store needs. Satisfied by
// both *pgxpool.Pool and pgxmock.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore backs the calendar with two tables:
//
//	working_hours(weekday text primary key, start_minutes int, end_minutes int)
//	appointments(id uuid primary key, date text, start_minutes int,
//	             duration_minutes int, appointment_type text,
//	             patient_name text, patient_email text, patient_phone text,
//	             reason text, created_at timestamptz)
type PostgresStore struct {
	db pgxQuerier
}

// NewPostgresStore creates a store backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("calendar: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

// NewPostgresStoreWithQuerier allows injecting mocks for tests.
func NewPostgresStoreWithQuerier(q pgxQuerier) *PostgresStore {
	return &PostgresStore{db: q}
}

// WorkingHoursFor implements Store.
func (s *PostgresStore) WorkingHoursFor(ctx context.Context, day Weekday) (WorkingHours, bool, error) {
	var start, end int
	err := s.db.QueryRow(ctx,
		`SELECT start_minutes, end_minutes FROM working_hours WHERE weekday = $1`,
		string(day),
	).Scan(&start, &end)
	if errors.Is(err, pgx.ErrNoRows) {
		return WorkingHours{}, false, nil
	}
	if err != nil {
		return WorkingHours{}, false, fmt.Errorf("calendar: load working hours: %w", err)
	}
	return WorkingHours{Start: TimeOfDay(start), End: TimeOfDay(end)}, true, nil
}

// AppointmentsOn implements Store.
func (s *PostgresStore) AppointmentsOn(ctx context.Context, date string) ([]Appointment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT date, start_minutes, duration_minutes, appointment_type,
		        patient_name, patient_email, patient_phone, reason
		   FROM appointments
		  WHERE date = $1
		  ORDER BY start_minutes`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("calendar: load appointments: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var appt Appointment
		var start int
		if err := rows.Scan(
			&appt.Date, &start, &appt.DurationMinutes, &appt.AppointmentType,
			&appt.Patient.Name, &appt.Patient.Email, &appt.Patient.Phone, &appt.Reason,
		); err != nil {
			return nil, fmt.Errorf("calendar: scan appointment: %w", err)
		}
		appt.StartTime = TimeOfDay(start)
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("calendar: load appointments: %w", err)
	}
	return out, nil
}

// Append implements Store.
func (s *PostgresStore) Append(ctx context.Context, appt Appointment) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO appointments
		   (id, date, start_minutes, duration_minutes, appointment_type,
		    patient_name, patient_email, patient_phone, reason, created_at)
		 VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, now())`,
		appt.Date, int(appt.StartTime), appt.DurationMinutes, appt.AppointmentType,
		appt.Patient.Name, appt.Patient.Email, appt.Patient.Phone, appt.Reason,
	)
	if err != nil {
		return fmt.Errorf("calendar: insert appointment: %w", err)
	}
	return nil
}
