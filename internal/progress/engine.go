// Package progress turns a user's tasks and habit check-ins into progress statistics:
// task counts, due-date completion trends and per-habit streaks.
package progress

import (
	"context"
	"time"

	"go.uber.org/zap"

	"taskadee/internal/model"
	"taskadee/pkg/logger"
)

// TaskLister is the read side of the task store.
type TaskLister interface {
	ListByUser(ctx context.Context, userID int) ([]model.Task, error)
}

// HabitLister is the read side of the habit store.
type HabitLister interface {
	ListWithCheckins(ctx context.Context, userID int) ([]model.HabitWithCheckins, error)
}

// Engine computes progress reports. It keeps no state between calls and is safe for
// concurrent use.
type Engine struct {
	tasks  TaskLister
	habits HabitLister
	logger *zap.Logger
}

func NewEngine(tasks TaskLister, habits HabitLister, logger *zap.Logger) *Engine {
	return &Engine{
		tasks:  tasks,
		habits: habits,
		logger: logger,
	}
}

// ComputeProgress reads the user's tasks and habits and summarizes them as of reference.
// Store errors are returned as is; a user without data gets a zero-valued report.
func (e *Engine) ComputeProgress(ctx context.Context, userID int, reference time.Time) (*model.ProgressReport, error) {
	log := logger.WithTrace(ctx, e.logger)
	log.Debug("Computing progress",
		zap.Int("user_id", userID),
		zap.Time("reference", reference),
	)

	tasks, err := e.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	habits, err := e.habits.ListWithCheckins(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := Compute(userID, reference, tasks, habits)

	log.Debug("Progress computed",
		zap.Int("user_id", userID),
		zap.Int("tasks", len(tasks)),
		zap.Int("habits", len(habits)),
		zap.Int("overdue", report.Tasks.Overdue),
	)
	return report, nil
}

// Compute builds the report from already loaded records. Records owned by another user
// are ignored.
func Compute(userID int, reference time.Time, tasks []model.Task, habits []model.HabitWithCheckins) *model.ProgressReport {
	report := &model.ProgressReport{
		Tasks: SummarizeTasks(userID, tasks, reference),
		Habits: model.HabitsSummary{
			PerHabit: make([]model.HabitSummary, 0, len(habits)),
		},
	}
	for _, h := range habits {
		if h.UserID != userID {
			continue
		}
		report.Habits.PerHabit = append(report.Habits.PerHabit, SummarizeHabit(h, reference))
	}
	return report
}
