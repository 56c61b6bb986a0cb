package availability

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/practitioner-scheduling/internal/apperr"
	"github.com/hackgods/practitioner-scheduling/internal/calendar"
)

var (
	ErrAvailabilityNotSet   = apperr.New(apperr.KindNotFound, "availability_not_set", "availability not set")
	ErrInvalidAvailability  = apperr.New(apperr.KindValidation, "invalid_availability", "invalid availability")
	ErrPractitionerNotFound = apperr.New(apperr.KindNotFound, "practitioner_not_found", "practitioner not found")
)

// Availability is a practitioner's recurring daily working window.
type Availability struct {
	PractitionerID uuid.UUID
	Start          calendar.Clock
	End            calendar.Clock
	WorkingDays    []time.Weekday
	UpdatedAt      time.Time
}

func (a Availability) WorksOn(d time.Weekday) bool {
	return slices.Contains(a.WorkingDays, d)
}

// Validate checks the window can hold at least one full slot on at least one day.
func (a Availability) Validate() error {
	if a.PractitionerID == uuid.Nil {
		return fmt.Errorf("%w: practitioner id is required", ErrInvalidAvailability)
	}
	if !a.Start.Valid() || a.End < 0 || a.End > calendar.Clock(24*60) {
		return fmt.Errorf("%w: times must fall within one day", ErrInvalidAvailability)
	}
	if a.Start >= a.End {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidAvailability, a.Start, a.End)
	}
	if a.End.Sub(a.Start) < SlotWidth {
		return fmt.Errorf("%w: window %s-%s is shorter than one %s slot", ErrInvalidAvailability, a.Start, a.End, SlotWidth)
	}
	if len(a.WorkingDays) == 0 {
		return fmt.Errorf("%w: at least one working day is required", ErrInvalidAvailability)
	}
	for _, d := range a.WorkingDays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: unknown weekday %d", ErrInvalidAvailability, d)
		}
	}
	return nil
}

// normalizeDays returns the working days sorted Sunday first with duplicates removed.
func normalizeDays(days []time.Weekday) []time.Weekday {
	out := slices.Clone(days)
	slices.Sort(out)
	return slices.Compact(out)
}
