package value

import (
	"fmt"
	"time"
)

// Weekdays is a set of days of the week, Sunday=0. The empty set and the
// full set both mean "every day" for scheduling purposes.
type Weekdays uint8

const allWeekdays Weekdays = 1<<7 - 1

// ParseWeekdays builds a set from wire-form day numbers, rejecting values
// outside 0-6 and duplicates.
func ParseWeekdays(days []int) (Weekdays, error) {
	var w Weekdays

	for _, d := range days {
		if d < 0 || d > 6 {
			return 0, fmt.Errorf("invalid day of week %d", d)
		}

		bit := Weekdays(1) << d
		if w&bit != 0 {
			return 0, fmt.Errorf("duplicate day of week %d", d)
		}

		w |= bit
	}

	return w, nil
}

func (w Weekdays) Contains(d time.Weekday) bool {
	return w&(1<<uint(d)) != 0
}

func (w Weekdays) Empty() bool {
	return w == 0
}

func (w Weekdays) Full() bool {
	return w == allWeekdays
}

// Covers reports whether the set places any restriction at all on d.
func (w Weekdays) Covers(d time.Weekday) bool {
	if w.Empty() || w.Full() {
		return true
	}

	return w.Contains(d)
}

// Days lists the members in ascending wire-form order.
func (w Weekdays) Days() []int {
	var days []int

	for d := 0; d < 7; d++ {
		if w&(1<<d) != 0 {
			days = append(days, d)
		}
	}

	return days
}
