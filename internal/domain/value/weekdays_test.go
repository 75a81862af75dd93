package value_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"promo-engine/internal/domain/value"
)

func TestParseWeekdays(t *testing.T) {
	rq := require.New(t)

	weekdaysOnly, err := value.ParseWeekdays([]int{1, 2, 3, 4, 5})
	rq.NoError(err)
	rq.True(weekdaysOnly.Contains(time.Monday))
	rq.True(weekdaysOnly.Contains(time.Friday))
	rq.False(weekdaysOnly.Contains(time.Sunday))
	rq.False(weekdaysOnly.Contains(time.Saturday))
	rq.Equal([]int{1, 2, 3, 4, 5}, weekdaysOnly.Days())

	_, err = value.ParseWeekdays([]int{7})
	rq.Error(err)

	_, err = value.ParseWeekdays([]int{-1})
	rq.Error(err)

	_, err = value.ParseWeekdays([]int{1, 1})
	rq.Error(err)
}

func TestWeekdaysCovers(t *testing.T) {
	rq := require.New(t)

	var empty value.Weekdays
	rq.True(empty.Empty())
	rq.True(empty.Covers(time.Sunday))

	full, err := value.ParseWeekdays([]int{0, 1, 2, 3, 4, 5, 6})
	rq.NoError(err)
	rq.True(full.Full())
	rq.True(full.Covers(time.Wednesday))

	weekend, err := value.ParseWeekdays([]int{0, 6})
	rq.NoError(err)
	rq.True(weekend.Covers(time.Saturday))
	rq.False(weekend.Covers(time.Tuesday))
}
