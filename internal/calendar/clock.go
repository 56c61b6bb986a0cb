package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day expressed in minutes after midnight.
type Clock int

const minutesPerDay = 24 * 60

func NewClock(hour, minute int) (Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("calendar: invalid time of day %02d:%02d", hour, minute)
	}
	return Clock(hour*60 + minute), nil
}

// MustClock is NewClock for constants and tests.
func MustClock(hour, minute int) Clock {
	c, err := NewClock(hour, minute)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseClock accepts "15:04", "9:30", "09.30" and 12-hour forms such as "09:00 AM".
func ParseClock(s string) (Clock, error) {
	raw := s
	s = strings.ToUpper(strings.TrimSpace(s))

	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	s = strings.ReplaceAll(s, ".", ":")
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("calendar: invalid time of day %q", raw)
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil {
		return 0, fmt.Errorf("calendar: invalid time of day %q", raw)
	}

	if meridiem != "" {
		if h < 1 || h > 12 {
			return 0, fmt.Errorf("calendar: invalid 12-hour time %q", raw)
		}
		h %= 12
		if meridiem == "PM" {
			h += 12
		}
	}

	c, err := NewClock(h, m)
	if err != nil {
		return 0, fmt.Errorf("calendar: invalid time of day %q", raw)
	}
	return c, nil
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// Add returns c shifted by d. The result may reach 24:00 but callers must not
// wrap it into the next day.
func (c Clock) Add(d time.Duration) Clock {
	return c + Clock(d/time.Minute)
}

// Sub is the duration from o to c.
func (c Clock) Sub(o Clock) time.Duration {
	return time.Duration(c-o) * time.Minute
}

func (c Clock) Valid() bool {
	return c >= 0 && c < minutesPerDay
}

// On places c on day d at UTC.
func (c Clock) On(d Date) time.Time {
	return d.Midnight().Add(time.Duration(c) * time.Minute)
}

// String renders the canonical 24-hour label, e.g. "09:30".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
