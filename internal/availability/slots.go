package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/practitioner-scheduling/internal/calendar"
)

// SlotWidth is the fixed booking granularity.
const SlotWidth = 30 * time.Minute

// Slot is a bookable interval on a specific day. It is derived, never stored.
type Slot struct {
	PractitionerID uuid.UUID
	Date           calendar.Date
	Start          calendar.Clock
	End            calendar.Clock
}

// Label is the time slot string stored on appointments, e.g. "09:30".
func (s Slot) Label() string {
	return s.Start.String()
}

// GenerateSlots lays consecutive SlotWidth slots from a.Start until the next slot
// would run past a.End. A trailing partial interval is dropped. Non-working days
// yield no slots.
func GenerateSlots(a Availability, date calendar.Date) []Slot {
	if !a.WorksOn(date.Weekday()) {
		return nil
	}

	var slots []Slot
	for start := a.Start; start.Add(SlotWidth) <= a.End; start = start.Add(SlotWidth) {
		slots = append(slots, Slot{
			PractitionerID: a.PractitionerID,
			Date:           date,
			Start:          start,
			End:            start.Add(SlotWidth),
		})
	}
	return slots
}

// FindSlot returns the slot starting at start, if the sequence has one.
func FindSlot(slots []Slot, start calendar.Clock) (Slot, bool) {
	for _, s := range slots {
		if s.Start == start {
			return s, true
		}
	}
	return Slot{}, false
}
