package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskadee/internal/model"
	"taskadee/internal/service"
	"taskadee/pkg/logger"
)

type TaskService interface {
	List(ctx context.Context, userID int, status, sort string) ([]model.Task, error)
	Get(ctx context.Context, userID, taskID int) (*model.Task, error)
	Create(ctx context.Context, userID int, in service.TaskInput) (*model.Task, error)
	Update(ctx context.Context, userID, taskID int, patch service.TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, userID, taskID int) error
}

type TaskHandler struct {
	tasks  TaskService
	logger *zap.Logger
}

func NewTaskHandler(tasks TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

type listTasksQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending complete"`
	Sort   string `form:"sort" binding:"omitempty,oneof=due_date created_at"`
}

type taskBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Status      *string `json:"status"`
}

// 接受 RFC 3339 和不带时区的 ISO 8601；不带时区的按 UTC 处理
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDueDate(s string) (*time.Time, bool) {
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// dueDate converts the optional due_date field; an empty string means unset.
func (b taskBody) dueDate(c *gin.Context) (*time.Time, bool) {
	if b.DueDate == nil || *b.DueDate == "" {
		return nil, true
	}
	t, ok := parseDueDate(*b.DueDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date", "field": "due_date"})
		return nil, false
	}
	return t, true
}

// ListTasks handles GET /api/tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var q listTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindingError(c, err)
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), userID, q.Status, q.Sort)
	if err != nil {
		respondError(c, h.logger, "fetch tasks", err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Debug("ListTasks: success",
		zap.Int("user_id", userID),
		zap.Int("task_count", len(tasks)),
	)
	c.JSON(http.StatusOK, tasks)
}

// CreateTask handles POST /api/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var body taskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		bindingError(c, err)
		return
	}
	due, ok := body.dueDate(c)
	if !ok {
		return
	}

	in := service.TaskInput{
		Description: body.Description,
		DueDate:     due,
	}
	if body.Title != nil {
		in.Title = *body.Title
	}
	if body.Status != nil {
		in.Status = *body.Status
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, h.logger, "create task", err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("CreateTask: success",
		zap.Int("user_id", userID),
		zap.Int("task_id", task.ID),
	)
	c.JSON(http.StatusCreated, task)
}

// GetTask handles GET /api/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	taskID, ok := parseID(c, "task")
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, h.logger, "fetch task", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask handles PUT /api/tasks/:id; absent fields keep their value.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	taskID, ok := parseID(c, "task")
	if !ok {
		return
	}
	var body taskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		bindingError(c, err)
		return
	}
	due, ok := body.dueDate(c)
	if !ok {
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), userID, taskID, service.TaskPatch{
		Title:       body.Title,
		Description: body.Description,
		DueDate:     due,
		Status:      body.Status,
	})
	if err != nil {
		respondError(c, h.logger, "update task", err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("UpdateTask: success",
		zap.Int("user_id", userID),
		zap.Int("task_id", taskID),
		zap.String("status", task.Status),
	)
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	taskID, ok := parseID(c, "task")
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), userID, taskID); err != nil {
		respondError(c, h.logger, "delete task", err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("DeleteTask: success",
		zap.Int("user_id", userID),
		zap.Int("task_id", taskID),
	)
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}
