package appointment

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/practitioner-scheduling/internal/calendar"
)

// MemoryRepository is an in-process test double for Repository. It enforces
// the same one-active-booking-per-slot rule as the Postgres index.
type MemoryRepository struct {
	mu            sync.RWMutex
	patients      map[uuid.UUID]Patient
	practitioners map[uuid.UUID]Practitioner
	appointments  map[uuid.UUID]Appointment
	events        []EventLog
	now           func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		patients:      make(map[uuid.UUID]Patient),
		practitioners: make(map[uuid.UUID]Practitioner),
		appointments:  make(map[uuid.UUID]Appointment),
		now:           time.Now,
	}
}

func (r *MemoryRepository) AddPatient(p Patient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[p.ID] = p
}

func (r *MemoryRepository) AddPractitioner(p Practitioner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.practitioners[p.ID] = p
}

// PutAppointment stores a as is, bypassing the active-slot check.
func (r *MemoryRepository) PutAppointment(a Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments[a.ID] = a
}

func (r *MemoryRepository) Events() []EventLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.events)
}

func (r *MemoryRepository) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) GetPractitionerByID(_ context.Context, id uuid.UUID) (*Practitioner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.practitioners[id]
	if !ok {
		return nil, ErrPractitionerNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) GetAppointmentDetail(_ context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	d := r.detail(a)
	return &d, nil
}

func (r *MemoryRepository) ListScheduledTimeSlots(_ context.Context, practitionerID uuid.UUID, date calendar.Date) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var labels []string
	for _, a := range r.appointments {
		if a.PractitionerID == practitionerID && a.Date == date && a.Status == StatusScheduled {
			labels = append(labels, a.TimeSlot)
		}
	}
	return labels, nil
}

func (r *MemoryRepository) CreateScheduledAppointment(_ context.Context, in NewAppointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.appointments {
		if a.Status == StatusScheduled &&
			a.PractitionerID == in.PractitionerID &&
			a.Date == in.Date &&
			a.TimeSlot == in.TimeSlot {
			return nil, ErrSlotAlreadyBooked
		}
	}

	now := r.now().UTC()
	a := Appointment{
		ID:             uuid.New(),
		PractitionerID: in.PractitionerID,
		PatientID:      in.PatientID,
		Date:           in.Date,
		TimeSlot:       in.TimeSlot,
		Status:         StatusScheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.appointments[a.ID] = a
	return &a, nil
}

func (r *MemoryRepository) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to AppointmentStatus, actor *uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}

	now := r.now().UTC()
	a.Status = to
	a.UpdatedAt = now
	if to == StatusCancelled {
		a.CancelledBy = actor
		a.CancelledAt = &now
	}
	r.appointments[id] = a
	return &a, nil
}

func (r *MemoryRepository) ListAppointmentDetails(_ context.Context, partyID uuid.UUID, role Role) ([]AppointmentDetail, error) {
	if role != RolePatient && role != RolePractitioner {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []AppointmentDetail{}
	for _, a := range r.appointments {
		if (role == RolePatient && a.PatientID == partyID) ||
			(role == RolePractitioner && a.PractitionerID == partyID) {
			result = append(result, r.detail(a))
		}
	}
	slices.SortFunc(result, compareSchedule)
	return result, nil
}

func (r *MemoryRepository) FindOverdueScheduled(_ context.Context, before calendar.Date) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Appointment
	for _, a := range r.appointments {
		if a.Status == StatusScheduled && a.Date.Before(before) {
			result = append(result, a)
		}
	}
	slices.SortFunc(result, func(a, b Appointment) int {
		return compareSchedule(AppointmentDetail{Appointment: a}, AppointmentDetail{Appointment: b})
	})
	return result, nil
}

func (r *MemoryRepository) InsertEvent(_ context.Context, ev EventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev.ID = int64(len(r.events) + 1)
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = r.now().UTC()
	}
	r.events = append(r.events, ev)
	return nil
}

// detail must be called with mu held.
func (r *MemoryRepository) detail(a Appointment) AppointmentDetail {
	return AppointmentDetail{
		Appointment:      a,
		PractitionerName: r.practitioners[a.PractitionerID].Name,
		PatientName:      r.patients[a.PatientID].Name,
	}
}
