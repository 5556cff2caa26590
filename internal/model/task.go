package model

import "time"

const (
	TaskStatusPending  = "pending"
	TaskStatusComplete = "complete"
)

func ValidTaskStatus(s string) bool {
	return s == TaskStatusPending || s == TaskStatusComplete
}

type Task struct {
	ID          int        `json:"id"`
	UserID      int        `json:"user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (t Task) IsComplete() bool { return t.Status == TaskStatusComplete }
func (t Task) IsPending() bool  { return t.Status == TaskStatusPending }
