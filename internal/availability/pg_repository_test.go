package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/practitioner-scheduling/internal/calendar"
)

var availabilityColumns = []string{"practitioner_id", "start_minute", "end_minute", "working_days", "updated_at"}

func TestPgGetAvailability(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgRepository(mock)
	id := uuid.New()
	updated := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT practitioner_id, start_minute, end_minute, working_days, updated_at\\s+FROM availabilities").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(availabilityColumns).
			AddRow(id, int32(540), int32(600), []int32{1, 2, 3, 4, 5}, updated))

	a, err := repo.GetAvailability(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, a.PractitionerID)
	assert.Equal(t, calendar.MustClock(9, 0), a.Start)
	assert.Equal(t, calendar.MustClock(10, 0), a.End)
	assert.Equal(t, weekdays, a.WorkingDays)
	assert.Equal(t, updated, a.UpdatedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgGetAvailabilityNotSet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgRepository(mock)
	id := uuid.New()

	mock.ExpectQuery("FROM availabilities").WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetAvailability(context.Background(), id)
	assert.ErrorIs(t, err, ErrAvailabilityNotSet)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUpsertAvailability(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgRepository(mock)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO availabilities").
		WithArgs(id, int32(480), int32(720), []int32{1, 3}).
		WillReturnRows(pgxmock.NewRows(availabilityColumns).
			AddRow(id, int32(480), int32(720), []int32{1, 3}, now))

	saved, err := repo.UpsertAvailability(context.Background(), Availability{
		PractitionerID: id,
		Start:          calendar.MustClock(8, 0),
		End:            calendar.MustClock(12, 0),
		WorkingDays:    []time.Weekday{time.Monday, time.Wednesday},
	})
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, saved.WorkingDays)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgPractitionerExists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgRepository(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT EXISTS").WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.PractitionerExists(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
