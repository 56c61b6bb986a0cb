package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hackgods/practitioner-scheduling/internal/calendar"
	"github.com/hackgods/practitioner-scheduling/internal/db"
)

const activeSlotIndex = "appointments_active_slot_key"

const appointmentColumns = `id, practitioner_id, patient_id, date, time_slot, status, cancelled_by, cancelled_at, created_at, updated_at`

const detailColumns = `a.id, a.practitioner_id, a.patient_id, a.date, a.time_slot, a.status, a.cancelled_by, a.cancelled_at, a.created_at, a.updated_at, pr.name, pa.name`

type PgRepository struct {
	db db.DBTX
}

func NewPgRepository(conn db.DBTX) *PgRepository {
	return &PgRepository{db: conn}
}

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var email *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.Email = email
	return &p, nil
}

func scanPractitioner(row pgx.Row) (*Practitioner, error) {
	var p Practitioner
	var specialty *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&specialty,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPractitionerNotFound
		}
		return nil, err
	}

	p.Specialty = specialty
	return &p, nil
}

func appointmentDest(a *Appointment, day *time.Time, status *string) []any {
	return []any{
		&a.ID,
		&a.PractitionerID,
		&a.PatientID,
		day,
		&a.TimeSlot,
		status,
		&a.CancelledBy,
		&a.CancelledAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	}
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a      Appointment
		day    time.Time
		status string
	)

	if err := row.Scan(appointmentDest(&a, &day, &status)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Date = calendar.DateOf(day)
	a.Status = AppointmentStatus(status)
	return &a, nil
}

func scanAppointmentDetail(row pgx.Row) (*AppointmentDetail, error) {
	var (
		d      AppointmentDetail
		day    time.Time
		status string
	)

	dest := append(appointmentDest(&d.Appointment, &day, &status), &d.PractitionerName, &d.PatientName)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	d.Date = calendar.DateOf(day)
	d.Status = AppointmentStatus(status)
	return &d, nil
}

// Interface methods

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetPractitionerByID(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, specialty, created_at, updated_at
		FROM practitioners
		WHERE id = $1
	`, id)
	return scanPractitioner(row)
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+detailColumns+`
		FROM appointments a
		JOIN practitioners pr ON pr.id = a.practitioner_id
		JOIN patients pa ON pa.id = a.patient_id
		WHERE a.id = $1
	`, id)
	return scanAppointmentDetail(row)
}

func (r *PgRepository) ListScheduledTimeSlots(ctx context.Context, practitionerID uuid.UUID, date calendar.Date) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT time_slot
		FROM appointments
		WHERE practitioner_id = $1
		  AND date = $2
		  AND status = 'scheduled'
	`, practitionerID, date.Midnight())
	if err != nil {
		return nil, fmt.Errorf("query scheduled slots: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}

func (r *PgRepository) CreateScheduledAppointment(ctx context.Context, in NewAppointment) (*Appointment, error) {
	id := uuid.New()

	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, practitioner_id, patient_id, date, time_slot, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'scheduled', now(), now())
		RETURNING `+appointmentColumns,
		id, in.PractitionerID, in.PatientID, in.Date.Midnight(), in.TimeSlot)

	appt, err := scanAppointment(row)
	if err != nil {
		if db.IsUniqueViolation(err, activeSlotIndex) {
			return nil, ErrSlotAlreadyBooked
		}
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	return appt, nil
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus, actor *uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now(),
		    cancelled_by = CASE WHEN $2 = 'cancelled' THEN $4 ELSE cancelled_by END,
		    cancelled_at = CASE WHEN $2 = 'cancelled' THEN now() ELSE cancelled_at END
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns,
		id, string(to), string(from), actor)

	return scanAppointment(row)
}

func (r *PgRepository) ListAppointmentDetails(ctx context.Context, partyID uuid.UUID, role Role) ([]AppointmentDetail, error) {
	var filter string
	switch role {
	case RolePatient:
		filter = "a.patient_id = $1"
	case RolePractitioner:
		filter = "a.practitioner_id = $1"
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+detailColumns+`
		FROM appointments a
		JOIN practitioners pr ON pr.id = a.practitioner_id
		JOIN patients pa ON pa.id = a.patient_id
		WHERE `+filter+`
		ORDER BY a.date, a.time_slot
	`, partyID)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	result := []AppointmentDetail{}
	for rows.Next() {
		d, err := scanAppointmentDetail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) FindOverdueScheduled(ctx context.Context, before calendar.Date) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = 'scheduled'
		  AND date < $1
		ORDER BY date, time_slot
	`, before.Midnight())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
