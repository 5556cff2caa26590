package progress

import (
	"sort"
	"time"

	"taskadee/internal/model"
)

// SummarizeHabit computes the streaks and completion rate of one habit as of reference.
//
// Check-ins are reduced to distinct calendar days first, so a duplicated day counts once.
// The current streak is the length of the run closed last by the most-recent-first walk,
// i.e. the oldest run, and only while the most recent check-in is at most one day
// before the reference day; otherwise it is 0.
// Completion rate is floor(distinct days / days since creation inclusive * 100).
func SummarizeHabit(h model.HabitWithCheckins, reference time.Time) model.HabitSummary {
	summary := model.HabitSummary{ID: h.ID, Name: h.Name}

	days := checkinDaysDesc(h)
	if len(days) == 0 {
		return summary
	}

	today := model.DateOf(reference)
	final, longest := streaks(days)
	if today.DaysSince(days[0]) <= 1 {
		summary.CurrentStreak = final
	}
	summary.LongestStreak = longest

	created := model.DateOf(h.CreatedAt.In(reference.Location()))
	summary.CompletionRate = completionRate(len(days), created, today)
	return summary
}

// checkinDaysDesc returns the distinct check-in days of h, most recent first.
func checkinDaysDesc(h model.HabitWithCheckins) []model.Date {
	seen := make(map[model.Date]struct{}, len(h.Checkins))
	days := make([]model.Date, 0, len(h.Checkins))
	for _, c := range h.Checkins {
		if c.HabitID != h.ID {
			continue
		}
		if _, dup := seen[c.CheckinDate]; dup {
			continue
		}
		seen[c.CheckinDate] = struct{}{}
		days = append(days, c.CheckinDate)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[j].Before(days[i])
	})
	return days
}

// streaks walks distinct days sorted most recent first. It returns the length of the
// run still open when the walk ends (the oldest run) and the longest run.
func streaks(days []model.Date) (final, longest int) {
	run := 1
	for i := 1; i < len(days); i++ {
		if days[i-1].DaysSince(days[i]) == 1 {
			run++
			continue
		}
		longest = max(longest, run)
		run = 1
	}
	longest = max(longest, run)
	return run, longest
}

func completionRate(checkins int, created, today model.Date) int {
	daysActive := today.DaysSince(created) + 1
	if daysActive <= 0 {
		return 0
	}
	return checkins * 100 / daysActive
}
