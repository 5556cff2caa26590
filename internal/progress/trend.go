package progress

import (
	"time"

	"taskadee/internal/model"
)

// TrendWindows are the lookback lengths, in days, reported for completed tasks.
var TrendWindows = [...]int{7, 30, 90}

// SummarizeTasks counts the user's tasks by status and builds the completion trends.
//
// A pending task is overdue when its due instant is strictly before reference, so a
// task due later today is not overdue yet. Trends bucket complete tasks by the calendar
// day of their due date (not the day they were completed), in reference's location.
func SummarizeTasks(userID int, tasks []model.Task, reference time.Time) model.TaskSummary {
	var summary model.TaskSummary
	completedByDueDay := make(map[model.Date]int)

	for _, t := range tasks {
		if t.UserID != userID {
			continue
		}
		switch {
		case t.IsComplete():
			summary.Completed++
			if t.DueDate != nil {
				completedByDueDay[model.DateOf(t.DueDate.In(reference.Location()))]++
			}
		case t.IsPending():
			summary.Pending++
			if t.DueDate != nil && t.DueDate.Before(reference) {
				summary.Overdue++
			}
		}
	}

	today := model.DateOf(reference)
	summary.TrendLast7 = trend(completedByDueDay, today, TrendWindows[0])
	summary.TrendLast30 = trend(completedByDueDay, today, TrendWindows[1])
	summary.TrendLast90 = trend(completedByDueDay, today, TrendWindows[2])
	return summary
}

// trend returns one point per day for the days ending at today, oldest first.
func trend(counts map[model.Date]int, today model.Date, days int) []model.TrendPoint {
	points := make([]model.TrendPoint, days)
	for i := range points {
		day := today.AddDays(i - days + 1)
		points[i] = model.TrendPoint{Date: day, Completed: counts[day]}
	}
	return points
}
