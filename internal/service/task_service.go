package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	contracts "taskadee/contracts/mq"
	"taskadee/internal/model"
	"taskadee/internal/repository"
	"taskadee/pkg/metrics"
)

const maxTitleLength = 120

type TaskStore interface {
	List(ctx context.Context, userID int, filter repository.TaskFilter) ([]model.Task, error)
	Get(ctx context.Context, userID, taskID int) (*model.Task, error)
	Insert(ctx context.Context, t *model.Task) error
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, userID, taskID int) error
}

// TaskInput is a new task. An empty Status means pending.
type TaskInput struct {
	Title       string
	Description *string
	DueDate     *time.Time
	Status      string
}

// TaskPatch changes only the non-nil fields.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *string
}

type TaskService struct {
	store     TaskStore
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewTaskService(store TaskStore, publisher EventPublisher, logger *zap.Logger) *TaskService {
	return &TaskService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns the user's tasks, optionally only those with status, ordered by due
// date when sort is "due_date" and by creation otherwise.
func (s *TaskService) List(ctx context.Context, userID int, status, sort string) ([]model.Task, error) {
	if status != "" && !model.ValidTaskStatus(status) {
		return nil, invalid("status", "must be %q or %q", model.TaskStatusPending, model.TaskStatusComplete)
	}
	return s.store.List(ctx, userID, repository.TaskFilter{
		Status:        status,
		SortByDueDate: sort == "due_date",
	})
}

func (s *TaskService) Get(ctx context.Context, userID, taskID int) (*model.Task, error) {
	return s.store.Get(ctx, userID, taskID)
}

func (s *TaskService) Create(ctx context.Context, userID int, in TaskInput) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = model.TaskStatusPending
	}
	if !model.ValidTaskStatus(status) {
		return nil, invalid("status", "must be %q or %q", model.TaskStatusPending, model.TaskStatusComplete)
	}

	t := &model.Task{
		UserID:      userID,
		Title:       title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      status,
	}
	if err := s.store.Insert(ctx, t); err != nil {
		return nil, err
	}
	if t.IsComplete() {
		s.completed(ctx, t)
	}
	return t, nil
}

func (s *TaskService) Update(ctx context.Context, userID, taskID int, patch TaskPatch) (*model.Task, error) {
	t, err := s.store.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	wasComplete := t.IsComplete()

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		t.Title = title
	}
	if patch.Description != nil {
		t.Description = patch.Description
	}
	if patch.DueDate != nil {
		t.DueDate = patch.DueDate
	}
	if patch.Status != nil {
		if !model.ValidTaskStatus(*patch.Status) {
			return nil, invalid("status", "must be %q or %q", model.TaskStatusPending, model.TaskStatusComplete)
		}
		t.Status = *patch.Status
	}

	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}
	if !wasComplete && t.IsComplete() {
		s.completed(ctx, t)
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID int) error {
	return s.store.Delete(ctx, userID, taskID)
}

func (s *TaskService) completed(ctx context.Context, t *model.Task) {
	metrics.IncrementTaskCompleted()
	publish(ctx, s.publisher, s.logger, contracts.RoutingKeyTaskCompleted, contracts.TaskCompletedPayload{
		TaskID:      t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		DueDate:     t.DueDate,
		CompletedAt: s.now().UTC(),
	})
}

func validateTitle(title string) error {
	if title == "" {
		return invalid("title", "is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return invalid("title", "must be at most %d characters", maxTitleLength)
	}
	return nil
}
