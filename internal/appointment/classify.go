package appointment

import (
	"slices"

	"github.com/hackgods/practitioner-scheduling/internal/calendar"
)

// Buckets groups a party's appointments for display.
type Buckets struct {
	Upcoming []AppointmentDetail
	Past     []AppointmentDetail
}

// IsUpcoming applies the one classification rule both parties see: the appointment
// is not cancelled and its calendar day is asOf or later.
func IsUpcoming(a Appointment, asOf calendar.Date) bool {
	return a.Status != StatusCancelled && !a.Date.Before(asOf)
}

// Classify splits items into upcoming and past, each ordered by day then slot start.
func Classify(items []AppointmentDetail, asOf calendar.Date) Buckets {
	b := Buckets{
		Upcoming: []AppointmentDetail{},
		Past:     []AppointmentDetail{},
	}
	for _, item := range items {
		if IsUpcoming(item.Appointment, asOf) {
			b.Upcoming = append(b.Upcoming, item)
		} else {
			b.Past = append(b.Past, item)
		}
	}
	slices.SortStableFunc(b.Upcoming, compareSchedule)
	slices.SortStableFunc(b.Past, compareSchedule)
	return b
}

func compareSchedule(a, b AppointmentDetail) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	ca, errA := calendar.ParseClock(a.TimeSlot)
	cb, errB := calendar.ParseClock(b.TimeSlot)
	switch {
	case errA == nil && errB == nil:
		return int(ca) - int(cb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	if a.TimeSlot < b.TimeSlot {
		return -1
	}
	if a.TimeSlot > b.TimeSlot {
		return 1
	}
	return 0
}
