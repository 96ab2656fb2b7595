package learning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	cases := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 7, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{5, 5, 100},
		{6, 5, 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Percentage(tc.completed, tc.total), "%d/%d", tc.completed, tc.total)
	}
}

var now = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

func daysAgo(n int, hour int) time.Time {
	return time.Date(2024, 3, 10-n, hour, 30, 0, 0, time.UTC)
}

func TestStreak_CountsBackFromToday(t *testing.T) {
	activity := []time.Time{daysAgo(0, 9), daysAgo(0, 11), daysAgo(1, 8), daysAgo(2, 23), daysAgo(4, 10)}
	assert.Equal(t, 3, Streak(activity, now))
}

func TestStreak_AnchorsOnYesterday(t *testing.T) {
	activity := []time.Time{daysAgo(1, 8), daysAgo(2, 8)}
	assert.Equal(t, 2, Streak(activity, now))
}

func TestStreak_IgnoresFutureDays(t *testing.T) {
	tomorrow := daysAgo(-1, 8)

	assert.Equal(t, 2, Streak([]time.Time{tomorrow, daysAgo(1, 8), daysAgo(2, 8)}, now))
	assert.Equal(t, 2, Streak([]time.Time{tomorrow, daysAgo(0, 8), daysAgo(1, 8)}, now))
	assert.Equal(t, 0, Streak([]time.Time{tomorrow}, now))
}

func TestStreak_BrokenStreak(t *testing.T) {
	activity := []time.Time{daysAgo(2, 8), daysAgo(3, 8)}
	assert.Equal(t, 0, Streak(activity, now))
}

func TestStreak_UsesUTCDays(t *testing.T) {
	plus5 := time.FixedZone("UTC+5", 5*3600)
	// 02:00 local on the 10th is 21:00 UTC on the 9th.
	activity := []time.Time{time.Date(2024, 3, 10, 2, 0, 0, 0, plus5)}
	assert.Equal(t, 1, Streak(activity, now))
}

func TestStreak_Empty(t *testing.T) {
	assert.Equal(t, 0, Streak(nil, now))
}

func TestLongestStreak(t *testing.T) {
	activity := []time.Time{
		daysAgo(0, 1),
		daysAgo(5, 1), daysAgo(6, 1), daysAgo(6, 20), daysAgo(7, 1), daysAgo(8, 1),
		daysAgo(10, 1),
	}
	assert.Equal(t, 4, LongestStreak(activity))
	assert.Equal(t, 0, LongestStreak(nil))
	assert.Equal(t, 1, LongestStreak([]time.Time{now}))
}
