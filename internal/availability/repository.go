package availability

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists one availability window per practitioner.
type Repository interface {
	// GetAvailability returns ErrAvailabilityNotSet when the practitioner has no window.
	GetAvailability(ctx context.Context, practitionerID uuid.UUID) (*Availability, error)
	UpsertAvailability(ctx context.Context, a Availability) (*Availability, error)

	PractitionerExists(ctx context.Context, practitionerID uuid.UUID) (bool, error)
}
