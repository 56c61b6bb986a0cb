package availability

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

type PgRepository struct {
	db db.DBTX
}

func NewPgRepository(conn db.DBTX) *PgRepository {
	return &PgRepository{db: conn}
}

func scanAvailability(row pgx.Row) (*Availability, error) {
	var (
		a           Availability
		start, end  int32
		workingDays []int32
	)

	err := row.Scan(
		&a.PractitionerID,
		&start,
		&end,
		&workingDays,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAvailabilityNotSet
		}
		return nil, err
	}

	a.Start = calendar.Clock(start)
	a.End = calendar.Clock(end)
	a.WorkingDays = make([]time.Weekday, 0, len(workingDays))
	for _, d := range workingDays {
		a.WorkingDays = append(a.WorkingDays, time.Weekday(d))
	}
	return &a, nil
}

func (r *PgRepository) GetAvailability(ctx context.Context, practitionerID uuid.UUID) (*Availability, error) {
	row := r.db.QueryRow(ctx, `
		SELECT practitioner_id, start_minute, end_minute, working_days, updated_at
		FROM availabilities
		WHERE practitioner_id = $1
	`, practitionerID)
	return scanAvailability(row)
}

func (r *PgRepository) UpsertAvailability(ctx context.Context, a Availability) (*Availability, error) {
	days := make([]int32, 0, len(a.WorkingDays))
	for _, d := range a.WorkingDays {
		days = append(days, int32(d))
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO availabilities (practitioner_id, start_minute, end_minute, working_days, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (practitioner_id) DO UPDATE
		SET start_minute = EXCLUDED.start_minute,
		    end_minute = EXCLUDED.end_minute,
		    working_days = EXCLUDED.working_days,
		    updated_at = now()
		RETURNING practitioner_id, start_minute, end_minute, working_days, updated_at
	`, a.PractitionerID, int32(a.Start), int32(a.End), days)

	saved, err := scanAvailability(row)
	if err != nil {
		return nil, fmt.Errorf("upsert availability: %w", err)
	}
	return saved, nil
}

func (r *PgRepository) PractitionerExists(ctx context.Context, practitionerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM practitioners WHERE id = $1)
	`, practitionerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check practitioner: %w", err)
	}
	return exists, nil
}
