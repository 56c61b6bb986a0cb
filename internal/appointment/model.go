package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/practitioner-scheduling/internal/calendar"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Role selects which side of an appointment a listing is for.
type Role string

const (
	RolePatient      Role = "patient"
	RolePractitioner Role = "practitioner"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RolePractitioner:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Practitioner struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Appointment struct {
	ID             uuid.UUID
	PractitionerID uuid.UUID
	PatientID      uuid.UUID
	Date           calendar.Date
	TimeSlot       string
	Status         AppointmentStatus
	CancelledBy    *uuid.UUID
	CancelledAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAppointment carries the coordinates of a booking about to be inserted.
type NewAppointment struct {
	PractitionerID uuid.UUID
	PatientID      uuid.UUID
	Date           calendar.Date
	TimeSlot       string
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// AppointmentDetail is an appointment with the parties' display names resolved.
type AppointmentDetail struct {
	Appointment
	PractitionerName string
	PatientName      string
}

// SlotKey identifies the booking coordinates that must be serialised.
func SlotKey(practitionerID uuid.UUID, date calendar.Date, timeSlot string) string {
	return fmt.Sprintf("%s:%s:%s", practitionerID, date, timeSlot)
}
