package analytics

import (
	"time"

	"github.com/mrwolf/moodlog/internal/models"
)

// ComputeStreak returns the number of consecutive calendar days, ending today
// or yesterday, that have at least one entry.
//
// entries must be ordered newest first. Calendar days are taken in today's
// location. Several entries on the same day count as one day, so logging twice
// in a day never shortens the streak.
func ComputeStreak(entries []models.MoodEntry, today time.Time) int {
	days := distinctDays(entries, today.Location())
	if len(days) == 0 {
		return 0
	}

	current := dayOf(today, today.Location())
	var anchor time.Time
	switch {
	case days[0].Equal(current):
		anchor = current
	case days[0].Equal(current.AddDate(0, 0, -1)):
		anchor = days[0]
	default:
		return 0
	}

	streak := 1
	for _, d := range days[1:] {
		if !d.Equal(anchor.AddDate(0, 0, -1)) {
			break
		}
		streak++
		anchor = d
	}
	return streak
}

// distinctDays collapses a newest-first entry list into its calendar days
func distinctDays(entries []models.MoodEntry, loc *time.Location) []time.Time {
	days := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		d := dayOf(e.CreatedAt, loc)
		if n := len(days); n > 0 && days[n-1].Equal(d) {
			continue
		}
		days = append(days, d)
	}
	return days
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
