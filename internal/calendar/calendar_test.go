package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateKeepsWrittenDay(t *testing.T) {
	tests := []struct {
		in   string
		want Date
	}{
		{"2024-06-10", Date{2024, time.June, 10}},
		{" 2024-06-10 ", Date{2024, time.June, 10}},
		{"2024-06-10T23:30:00-05:00", Date{2024, time.June, 10}},
		{"2024-06-10T00:30:00+09:00", Date{2024, time.June, 10}},
		{"2024-06-10T00:00:00.000Z", Date{2024, time.June, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "10/06/2024", "2024-02-30", "tomorrow"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestTodayIsUTCDay(t *testing.T) {
	// 23:30 in New York on June 9 is already June 10 in UTC.
	ny := time.FixedZone("EDT", -4*60*60)
	now := time.Date(2024, time.June, 9, 23, 30, 0, 0, ny)
	assert.Equal(t, Date{2024, time.June, 10}, Today(now))

	tokyo := time.FixedZone("JST", 9*60*60)
	now = time.Date(2024, time.June, 10, 8, 0, 0, 0, tokyo)
	assert.Equal(t, Date{2024, time.June, 9}, Today(now))
}

func TestDateCompare(t *testing.T) {
	a := Date{2024, time.June, 10}
	b := Date{2024, time.June, 11}
	c := Date{2025, time.January, 1}

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, b.Before(c))
	assert.Equal(t, 0, a.Compare(Date{2024, time.June, 10}))
	assert.False(t, a.Before(a))
}

func TestDateArithmetic(t *testing.T) {
	d := Date{2024, time.February, 28}
	assert.Equal(t, Date{2024, time.February, 29}, d.AddDays(1))
	assert.Equal(t, Date{2024, time.March, 1}, d.AddDays(2))
	assert.Equal(t, time.Wednesday, d.Weekday())
	assert.Equal(t, "2024-02-28", d.String())
	assert.Equal(t, Date{2024, time.March, 1}, NewDate(2024, time.February, 30))
	assert.Equal(t, time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), d.Midnight())
}

func TestDateTextRoundTrip(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalText([]byte("2024-06-10")))
	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", string(b))
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"09:00", "09:00"},
		{"9:30", "09:30"},
		{"17.45", "17:45"},
		{"09:00 AM", "09:00"},
		{"12:00 AM", "00:00"},
		{"12:30 PM", "12:30"},
		{"01:15 pm", "13:15"},
		{"23:59", "23:59"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseClock(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.String())
		})
	}
}

func TestParseClockRejects(t *testing.T) {
	for _, in := range []string{"", "24:00", "9", "09:60", "13:00 PM", "0:00 AM", "ab:cd", "09:5"} {
		_, err := ParseClock(in)
		assert.Error(t, err, in)
	}
}

func TestClockArithmetic(t *testing.T) {
	start := MustClock(9, 0)
	end := start.Add(30 * time.Minute)

	assert.Equal(t, "09:30", end.String())
	assert.Equal(t, 30*time.Minute, end.Sub(start))
	assert.Equal(t, 9, start.Hour())
	assert.Equal(t, 30, end.Minute())
	assert.Equal(t,
		time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC),
		end.On(Date{2024, time.June, 10}),
	)
	assert.True(t, MustClock(23, 59).Valid())
	assert.False(t, MustClock(23, 59).Add(time.Minute).Valid())
}

func TestParseWeekday(t *testing.T) {
	for token, want := range map[string]time.Weekday{
		"mon":      time.Monday,
		"Tuesday":  time.Tuesday,
		" WED ":    time.Wednesday,
		"thurs":    time.Thursday,
		"fri":      time.Friday,
		"saturday": time.Saturday,
		"Sun":      time.Sunday,
	} {
		got, err := ParseWeekday(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, got, token)
	}

	_, err := ParseWeekday("funday")
	assert.Error(t, err)
	assert.Equal(t, "Mon", WeekdayLabel(time.Monday))
	assert.Equal(t, "", WeekdayLabel(time.Weekday(9)))
}
