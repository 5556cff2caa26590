package model

// ProgressReport is derived from a user's tasks and habits; it is never persisted.
type ProgressReport struct {
	Tasks  TaskSummary   `json:"tasks"`
	Habits HabitsSummary `json:"habits"`
}

type TaskSummary struct {
	Completed   int          `json:"completed"`
	Pending     int          `json:"pending"`
	Overdue     int          `json:"overdue"`
	TrendLast7  []TrendPoint `json:"trend_last_7"`
	TrendLast30 []TrendPoint `json:"trend_last_30"`
	TrendLast90 []TrendPoint `json:"trend_last_90"`
}

// TrendPoint counts complete tasks due on Date.
type TrendPoint struct {
	Date      Date `json:"date"`
	Completed int  `json:"completed"`
}

type HabitsSummary struct {
	PerHabit []HabitSummary `json:"per_habit"`
}

type HabitSummary struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	CurrentStreak  int    `json:"current_streak"`
	LongestStreak  int    `json:"longest_streak"`
	CompletionRate int    `json:"completion_rate"`
}
