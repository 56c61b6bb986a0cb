package availability

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/practitioner-scheduling/internal/calendar"
)

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// 2030-01-07 is a Monday.
var monday = calendar.Date{Year: 2030, Month: time.January, Day: 7}

func labels(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Label())
	}
	return out
}

func TestGenerateSlotsMorningHour(t *testing.T) {
	a := Availability{
		PractitionerID: uuid.New(),
		Start:          calendar.MustClock(9, 0),
		End:            calendar.MustClock(10, 0),
		WorkingDays:    weekdays,
	}

	slots := GenerateSlots(a, monday)

	assert.Equal(t, []string{"09:00", "09:30"}, labels(slots))
	assert.Equal(t, calendar.MustClock(9, 30), slots[0].End)
	assert.Equal(t, calendar.MustClock(10, 0), slots[1].End)
	assert.Equal(t, a.PractitionerID, slots[0].PractitionerID)
	assert.Equal(t, monday, slots[1].Date)
}

func TestGenerateSlotsDropsPartialTail(t *testing.T) {
	a := Availability{
		Start:       calendar.MustClock(9, 15),
		End:         calendar.MustClock(10, 30),
		WorkingDays: weekdays,
	}

	assert.Equal(t, []string{"09:15", "09:45"}, labels(GenerateSlots(a, monday)))
}

func TestGenerateSlotsNonWorkingDay(t *testing.T) {
	a := Availability{
		Start:       calendar.MustClock(9, 0),
		End:         calendar.MustClock(17, 0),
		WorkingDays: weekdays,
	}

	assert.Empty(t, GenerateSlots(a, monday.AddDays(5))) // Saturday
	assert.Empty(t, GenerateSlots(a, monday.AddDays(6))) // Sunday
	assert.Len(t, GenerateSlots(a, monday.AddDays(4)), 16)
}

func TestGenerateSlotsRunsToMidnight(t *testing.T) {
	a := Availability{
		Start:       calendar.MustClock(23, 0),
		End:         calendar.Clock(24 * 60),
		WorkingDays: []time.Weekday{time.Monday},
	}

	assert.Equal(t, []string{"23:00", "23:30"}, labels(GenerateSlots(a, monday)))
}

func TestGenerateSlotsIsDeterministic(t *testing.T) {
	a := Availability{
		Start:       calendar.MustClock(8, 0),
		End:         calendar.MustClock(12, 0),
		WorkingDays: weekdays,
	}

	assert.Equal(t, GenerateSlots(a, monday), GenerateSlots(a, monday))
}

// Every generated slot lies inside the window, on a working day, at an offset
// that is a multiple of the slot width, and in ascending order.
func TestGenerateSlotsStayInsideWindow(t *testing.T) {
	daySets := [][]time.Weekday{
		{time.Monday},
		{time.Saturday, time.Sunday},
		weekdays,
		{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
	}

	for startMin := 0; startMin < 24*60; startMin += 47 {
		for length := 30; startMin+length <= 24*60 && length <= 10*60; length += 23 {
			for _, days := range daySets {
				a := Availability{
					Start:       calendar.Clock(startMin),
					End:         calendar.Clock(startMin + length),
					WorkingDays: days,
				}
				for offset := 0; offset < 7; offset++ {
					date := monday.AddDays(offset)
					slots := GenerateSlots(a, date)

					if !a.WorksOn(date.Weekday()) {
						require.Empty(t, slots)
						continue
					}
					require.Len(t, slots, length/30)
					for i, s := range slots {
						require.GreaterOrEqual(t, s.Start, a.Start)
						require.LessOrEqual(t, s.End, a.End)
						require.Equal(t, SlotWidth, s.End.Sub(s.Start))
						require.Zero(t, s.Start.Sub(a.Start)%SlotWidth)
						if i > 0 {
							require.Equal(t, slots[i-1].End, s.Start)
						}
					}
				}
			}
		}
	}
}

func TestFindSlot(t *testing.T) {
	a := Availability{
		Start:       calendar.MustClock(9, 0),
		End:         calendar.MustClock(10, 0),
		WorkingDays: weekdays,
	}
	slots := GenerateSlots(a, monday)

	s, ok := FindSlot(slots, calendar.MustClock(9, 30))
	require.True(t, ok)
	assert.Equal(t, "09:30", s.Label())

	_, ok = FindSlot(slots, calendar.MustClock(9, 15))
	assert.False(t, ok)
	_, ok = FindSlot(slots, calendar.MustClock(10, 0))
	assert.False(t, ok)
}
