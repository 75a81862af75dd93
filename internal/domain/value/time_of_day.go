package value

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// TimeOfDay is a clock position within a day, minute precision, in the
// venue's local time.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}

	return TimeOfDay(hour*60 + minute), nil
}

// ParseTimeOfDay parses the "HH:MM" wire form. The form is strict: exactly
// two digits, a colon, two digits.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("parse time of day %q: want HH:MM", s)
	}

	for _, i := range [...]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("parse time of day %q: want HH:MM", s)
		}
	}

	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[3]-'0')*10 + int(s[4]-'0')

	return NewTimeOfDay(hour, minute)
}

// TimeOfDayFrom extracts the clock position of t in t's own location.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < minutesPerDay
}

// InWindow reports whether t falls in the inclusive window [start, end].
// A window with end < start wraps past midnight: it covers
// [start, 24:00) plus [00:00, end].
func (t TimeOfDay) InWindow(start, end TimeOfDay) bool {
	if start <= end {
		return t >= start && t <= end
	}

	return t >= start || t <= end
}
