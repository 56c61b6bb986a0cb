package appointment

import (
	"fmt"
	"slices"
)

// scheduled is the only non-terminal state.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled: {StatusCompleted, StatusCancelled},
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s AppointmentStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

func CanTransition(from, to AppointmentStatus) bool {
	return slices.Contains(transitions[from], to)
}

func checkTransition(from, to AppointmentStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, from, to)
	}
	return nil
}
