package model

import "time"

const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

func ValidFrequency(f string) bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

type Habit struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	Frequency string    `json:"frequency"`
	CreatedAt time.Time `json:"created_at"`
}

// HabitCheckin records that a habit was done on a calendar day.
// At most one per habit and day.
type HabitCheckin struct {
	ID          int  `json:"id"`
	HabitID     int  `json:"habit_id"`
	CheckinDate Date `json:"date"`
}

type HabitWithCheckins struct {
	Habit
	Checkins []HabitCheckin `json:"checkins"`
}

// HabitListItem is a habit together with its most recent check-in, if any.
type HabitListItem struct {
	Habit
	LastCheckin *Date `json:"last_checkin"`
}

// HabitCheckinHistory is the raw check-in history of one habit.
type HabitCheckinHistory struct {
	HabitID   int    `json:"habit_id"`
	HabitName string `json:"habit_name"`
	Checkins  []Date `json:"checkins"`
}
