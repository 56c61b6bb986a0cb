package availability

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process test double for Repository.
type MemoryRepository struct {
	mu            sync.RWMutex
	practitioners map[uuid.UUID]bool
	windows       map[uuid.UUID]Availability
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		practitioners: make(map[uuid.UUID]bool),
		windows:       make(map[uuid.UUID]Availability),
	}
}

// AddPractitioner registers an identity so windows can be attached to it.
func (r *MemoryRepository) AddPractitioner(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.practitioners[id] = true
}

func (r *MemoryRepository) GetAvailability(ctx context.Context, practitionerID uuid.UUID) (*Availability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.windows[practitionerID]
	if !ok {
		return nil, ErrAvailabilityNotSet
	}
	a.WorkingDays = slices.Clone(a.WorkingDays)
	return &a, nil
}

func (r *MemoryRepository) UpsertAvailability(ctx context.Context, a Availability) (*Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.practitioners[a.PractitionerID] {
		return nil, ErrPractitionerNotFound
	}
	a.WorkingDays = slices.Clone(a.WorkingDays)
	a.UpdatedAt = time.Now().UTC()
	r.windows[a.PractitionerID] = a

	out := a
	out.WorkingDays = slices.Clone(a.WorkingDays)
	return &out, nil
}

func (r *MemoryRepository) PractitionerExists(ctx context.Context, practitionerID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.practitioners[practitionerID], nil
}
