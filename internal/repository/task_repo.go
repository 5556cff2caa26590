package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskadee/internal/model"
)

const taskColumns = `id, user_id, title, description, due_date, status, created_at`

type TaskRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewTaskRepository(db DBTX, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

// TaskFilter narrows List. An empty Status matches every status.
type TaskFilter struct {
	Status        string
	SortByDueDate bool
}

func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) error {
	r.logger.Debug("Inserting task",
		zap.Int("user_id", t.UserID),
		zap.String("title", t.Title),
		zap.String("status", t.Status),
	)
	query := `
        INSERT INTO tasks (user_id, title, description, due_date, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		t.UserID,
		t.Title,
		t.Description,
		t.DueDate,
		t.Status,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.Int("user_id", t.UserID),
		)
		return fmt.Errorf("insert task: %w", err)
	}
	r.logger.Info("Task inserted successfully",
		zap.Int("task_id", t.ID),
		zap.Int("user_id", t.UserID),
	)
	return nil
}

// ListByUser returns every task of the user in creation order.
func (r *TaskRepository) ListByUser(ctx context.Context, userID int) ([]model.Task, error) {
	return r.List(ctx, userID, TaskFilter{})
}

func (r *TaskRepository) List(ctx context.Context, userID int, filter TaskFilter) ([]model.Task, error) {
	r.logger.Debug("Listing tasks for user",
		zap.Int("user_id", userID),
		zap.String("status", filter.Status),
		zap.Bool("sort_by_due_date", filter.SortByDueDate),
	)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{userID}
	if filter.Status != "" {
		query += ` AND status = $2`
		args = append(args, filter.Status)
	}
	if filter.SortByDueDate {
		query += ` ORDER BY due_date ASC NULLS LAST, id ASC`
	} else {
		query += ` ORDER BY created_at ASC, id ASC`
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query tasks",
			zap.Error(err),
			zap.Int("user_id", userID),
		)
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			r.logger.Error("Failed to scan task row",
				zap.Error(err),
				zap.Int("user_id", userID),
			)
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	r.logger.Debug("Tasks listed successfully",
		zap.Int("user_id", userID),
		zap.Int("count", len(tasks)),
	)
	return tasks, nil
}

func (r *TaskRepository) Get(ctx context.Context, userID, taskID int) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	t, err := scanTask(r.db.QueryRow(ctx, query, taskID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get task",
			zap.Error(err),
			zap.Int("task_id", taskID),
		)
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

// Update overwrites the mutable fields of a task owned by t.UserID.
func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	r.logger.Debug("Updating task",
		zap.Int("task_id", t.ID),
		zap.String("status", t.Status),
	)
	query := `
        UPDATE tasks
        SET title = $1, description = $2, due_date = $3, status = $4
        WHERE id = $5 AND user_id = $6
    `
	result, err := r.db.Exec(ctx, query,
		t.Title,
		t.Description,
		t.DueDate,
		t.Status,
		t.ID,
		t.UserID,
	)
	if err != nil {
		r.logger.Error("Failed to update task",
			zap.Error(err),
			zap.Int("task_id", t.ID),
		)
		return fmt.Errorf("update task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Info("Task updated", zap.Int("task_id", t.ID))
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		r.logger.Error("Failed to delete task",
			zap.Error(err),
			zap.Int("task_id", taskID),
		)
		return fmt.Errorf("delete task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Info("Task deleted",
		zap.Int("task_id", taskID),
		zap.Int("user_id", userID),
	)
	return nil
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.DueDate,
		&t.Status,
		&t.CreatedAt,
	)
	return t, err
}
