package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation = "23505"

	liveSlotIndex   = "uniq_live_slot"
	patientDayIndex = "uniq_patient_day"
)

const appointmentColumns = `
	id, patient_id, professional_id,
	to_char(date, 'YYYY-MM-DD'), to_char(start_time, 'HH24:MI'),
	duration_minutes, type, status, price, payment_status,
	notes, cancellation_reason, cancelled_by, created_at, updated_at`

// occupyingStatuses mirrors Status.Occupies and the uniq_live_slot predicate.
const occupyingStatuses = `('scheduled', 'confirmed', 'in_progress', 'completed')`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &p, nil
}

func scanProfessional(row pgx.Row) (*Professional, error) {
	var p Professional

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Specialty,
		&p.Price,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfessionalNotFound
		}
		return nil, err
	}

	return &p, nil
}

func scanRule(row pgx.Row) (*AvailabilityRule, error) {
	var r AvailabilityRule

	err := row.Scan(
		&r.ID,
		&r.ProfessionalID,
		&r.DayOfWeek,
		&r.StartTime,
		&r.EndTime,
		&r.IsActive,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.ProfessionalID,
		&a.Date,
		&a.Time,
		&a.DurationMinutes,
		&a.Type,
		&a.Status,
		&a.Price,
		&a.PaymentStatus,
		&a.Notes,
		&a.CancellationReason,
		&a.CancelledBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

// mapUniqueViolation turns the storage backstop indexes into the same
// conflict sentinels the pre-checks produce, so a lost race is
// indistinguishable from a detected one.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case liveSlotIndex:
			return ErrSlotTaken
		case patientDayIndex:
			return ErrPatientDayTaken
		}
	}
	return err
}

// Interface methods

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetProfessionalByID(ctx context.Context, id uuid.UUID) (*Professional, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialty, price, created_at, updated_at
		FROM professionals
		WHERE id = $1
	`, id)
	return scanProfessional(row)
}

func (r *PgRepository) ListActiveRules(ctx context.Context, professionalID uuid.UUID) ([]AvailabilityRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, professional_id, day_of_week,
		       to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
		       is_active, created_at, updated_at
		FROM availability_rules
		WHERE professional_id = $1 AND is_active
		ORDER BY day_of_week, start_time
	`, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AvailabilityRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CreateRules(ctx context.Context, rules []AvailabilityRule) ([]AvailabilityRule, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created := make([]AvailabilityRule, 0, len(rules))
	for _, rule := range rules {
		row := tx.QueryRow(ctx, `
			INSERT INTO availability_rules (id, professional_id, day_of_week, start_time, end_time, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4::time, $5::time, $6, now(), now())
			RETURNING id, professional_id, day_of_week,
			          to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
			          is_active, created_at, updated_at
		`, rule.ID, rule.ProfessionalID, rule.DayOfWeek, rule.StartTime, rule.EndTime, rule.IsActive)

		saved, err := scanRule(row)
		if err != nil {
			return nil, err
		}
		created = append(created, *saved)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return created, nil
}

func (r *PgRepository) ListAppointmentsInRange(ctx context.Context, professionalID uuid.UUID, fromDate, toDate string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE professional_id = $1
		  AND date BETWEEN $2::date AND $3::date
		ORDER BY date, start_time
	`, professionalID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY date DESC, start_time DESC
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) LiveAppointmentAt(ctx context.Context, professionalID uuid.UUID, date, timeOfDay string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE professional_id = $1
		  AND date = $2::date
		  AND start_time = $3::time
		  AND status IN `+occupyingStatuses+`
	`, professionalID, date, timeOfDay)
	return scanAppointment(row)
}

func (r *PgRepository) PatientAppointmentOn(ctx context.Context, patientID, professionalID uuid.UUID, date string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		  AND professional_id = $2
		  AND date = $3::date
		  AND status NOT IN ('cancelled_by_patient', 'cancelled_by_clinic', 'rescheduled')
		LIMIT 1
	`, patientID, professionalID, date)
	return scanAppointment(row)
}

func (r *PgRepository) CreateAppointment(ctx context.Context, appt Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, professional_id, date, start_time,
		                          duration_minutes, type, status, price, payment_status,
		                          notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4::date, $5::time, $6, $7, $8, $9, $10, $11, now(), now())
		RETURNING `+appointmentColumns+`
	`, appt.ID, appt.PatientID, appt.ProfessionalID, appt.Date, appt.Time,
		appt.DurationMinutes, appt.Type, appt.Status, appt.Price, appt.PaymentStatus,
		appt.Notes)

	created, err := scanAppointment(row)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return created, nil
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from)

	return scanAppointment(row)
}

func (r *PgRepository) CancelAppointment(ctx context.Context, id uuid.UUID, from, to Status, reason string, cancelledBy uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    cancellation_reason = NULLIF($4, ''),
		    cancelled_by = $5,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from, reason, cancelledBy)

	return scanAppointment(row)
}

func (r *PgRepository) RescheduleAppointment(ctx context.Context, id uuid.UUID, newDate, newTime string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET date = $2::date,
		    start_time = $3::time,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, newDate, newTime)

	updated, err := scanAppointment(row)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return updated, nil
}

func (r *PgRepository) FindOverdue(ctx context.Context, endedBefore time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status IN ('scheduled', 'confirmed')
		  AND (date + start_time + make_interval(mins => duration_minutes)) < $1
	`, endedBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev AppointmentEvent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment_events (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert appointment event: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
