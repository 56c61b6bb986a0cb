package calendar

import (
	"fmt"
	"strings"
	"time"
)

var weekdayLabels = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// ParseWeekday maps day tokens such as "mon", "Monday" or "thurs" to a weekday.
func ParseWeekday(token string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "sun", "sunday":
		return time.Sunday, nil
	case "mon", "monday":
		return time.Monday, nil
	case "tue", "tues", "tuesday":
		return time.Tuesday, nil
	case "wed", "wednesday":
		return time.Wednesday, nil
	case "thu", "thur", "thurs", "thursday":
		return time.Thursday, nil
	case "fri", "friday":
		return time.Friday, nil
	case "sat", "saturday":
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("calendar: unknown day token %q", token)
}

// WeekdayLabel returns the three letter label used on the wire ("Mon").
func WeekdayLabel(d time.Weekday) string {
	if d < time.Sunday || d > time.Saturday {
		return ""
	}
	return weekdayLabels[d]
}
