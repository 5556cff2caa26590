package mq

import "time"

// Routing keys published on the events exchange.
const (
	RoutingKeyTaskCompleted        = "task.completed"
	RoutingKeyHabitCheckedIn       = "habit.checked_in"
	RoutingKeyHabitStreakMilestone = "habit.streak_milestone"
)

type TaskCompletedPayload struct {
	TaskID      int        `json:"task_id"`
	UserID      int        `json:"user_id"`
	Title       string     `json:"title"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt time.Time  `json:"completed_at"`
}

type HabitCheckedInPayload struct {
	CheckinID int    `json:"checkin_id"`
	HabitID   int    `json:"habit_id"`
	UserID    int    `json:"user_id"`
	Date      string `json:"date"` // YYYY-MM-DD format
}

type HabitStreakMilestonePayload struct {
	HabitID   int    `json:"habit_id"`
	UserID    int    `json:"user_id"`
	HabitName string `json:"habit_name"`
	Streak    int    `json:"streak"`
	Date      string `json:"date"` // YYYY-MM-DD format
}
