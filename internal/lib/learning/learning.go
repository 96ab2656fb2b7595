// Package learning holds the derived values shown to learners:
// course progress and activity streaks.
package learning

import (
	"math"
	"sort"
	"time"
)

// Percentage returns round(100*completed/total) clamped to 0..100.
// A course without lessons is 0% complete.
func Percentage(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(completed) / float64(total)))
	if pct > 100 {
		return 100
	}
	return pct
}

// day truncates t to its UTC calendar day.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// distinctDays returns the unique UTC days in descending order.
func distinctDays(activity []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(activity))
	days := make([]time.Time, 0, len(activity))
	for _, t := range activity {
		d := day(t)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}

// Streak counts consecutive active UTC days ending today. When there is no
// activity yet today the run may end yesterday instead, since today is not over.
// Days after today (clock skew between the database and the app) are ignored.
func Streak(activity []time.Time, now time.Time) int {
	today := day(now)

	days := distinctDays(activity)
	for len(days) > 0 && days[0].After(today) {
		days = days[1:]
	}
	if len(days) == 0 {
		return 0
	}

	expected := today
	if days[0].Equal(today.AddDate(0, 0, -1)) {
		expected = days[0]
	}

	streak := 0
	for _, d := range days {
		if !d.Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak is the longest run of consecutive active UTC days.
func LongestStreak(activity []time.Time) int {
	days := distinctDays(activity)
	if len(days) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDate(0, 0, -1).Equal(days[i]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
