package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/practitioner-scheduling/internal/calendar"
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetPractitionerByID(ctx context.Context, id uuid.UUID) (*Practitioner, error)

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error)

	// For conflict checks; returns the labels of scheduled appointments only.
	ListScheduledTimeSlots(ctx context.Context, practitionerID uuid.UUID, date calendar.Date) ([]string, error)

	// CreateScheduledAppointment returns ErrSlotAlreadyBooked when an active
	// booking already holds the same coordinates.
	CreateScheduledAppointment(ctx context.Context, in NewAppointment) (*Appointment, error)
	// UpdateAppointmentStatus only applies when the row is still in from;
	// otherwise ErrAppointmentNotFound. actor is recorded on cancellation.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus, actor *uuid.UUID) (*Appointment, error)

	ListAppointmentDetails(ctx context.Context, partyID uuid.UUID, role Role) ([]AppointmentDetail, error)

	// Overdue worker
	FindOverdueScheduled(ctx context.Context, before calendar.Date) ([]Appointment, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
