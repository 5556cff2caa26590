package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskadee/internal/model"
	"taskadee/internal/service"
	"taskadee/pkg/logger"
)

type HabitService interface {
	List(ctx context.Context, userID int) ([]model.HabitListItem, error)
	Create(ctx context.Context, userID int, name, frequency string) (*model.Habit, error)
	Update(ctx context.Context, userID, habitID int, patch service.HabitPatch) (*model.Habit, error)
	Delete(ctx context.Context, userID, habitID int) error
	CheckIn(ctx context.Context, userID, habitID int) (*model.HabitCheckin, error)
	Checkins(ctx context.Context, userID, habitID int) ([]model.HabitCheckin, error)
	History(ctx context.Context, userID int) ([]model.HabitCheckinHistory, error)
}

type HabitHandler struct {
	habits HabitService
	logger *zap.Logger
}

func NewHabitHandler(habits HabitService, logger *zap.Logger) *HabitHandler {
	return &HabitHandler{habits: habits, logger: logger}
}

type habitBody struct {
	Name      *string `json:"name"`
	Frequency *string `json:"frequency"`
}

// ListHabits handles GET /api/habits
func (h *HabitHandler) ListHabits(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	habits, err := h.habits.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "fetch habits", err)
		return
	}
	c.JSON(http.StatusOK, habits)
}

// CreateHabit handles POST /api/habits
func (h *HabitHandler) CreateHabit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var body habitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		bindingError(c, err)
		return
	}

	var name, frequency string
	if body.Name != nil {
		name = *body.Name
	}
	if body.Frequency != nil {
		frequency = *body.Frequency
	}
	habit, err := h.habits.Create(c.Request.Context(), userID, name, frequency)
	if err != nil {
		respondError(c, h.logger, "create habit", err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("CreateHabit: success",
		zap.Int("user_id", userID),
		zap.Int("habit_id", habit.ID),
	)
	c.JSON(http.StatusCreated, habit)
}

// UpdateHabit handles PUT /api/habits/:id
func (h *HabitHandler) UpdateHabit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	habitID, ok := parseID(c, "habit")
	if !ok {
		return
	}
	var body habitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		bindingError(c, err)
		return
	}

	habit, err := h.habits.Update(c.Request.Context(), userID, habitID, service.HabitPatch{
		Name:      body.Name,
		Frequency: body.Frequency,
	})
	if err != nil {
		respondError(c, h.logger, "update habit", err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

// DeleteHabit handles DELETE /api/habits/:id
func (h *HabitHandler) DeleteHabit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	habitID, ok := parseID(c, "habit")
	if !ok {
		return
	}
	if err := h.habits.Delete(c.Request.Context(), userID, habitID); err != nil {
		respondError(c, h.logger, "delete habit", err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("DeleteHabit: success",
		zap.Int("user_id", userID),
		zap.Int("habit_id", habitID),
	)
	c.JSON(http.StatusOK, gin.H{"message": "habit deleted"})
}

// CheckIn handles POST /api/habits/:id/checkin
func (h *HabitHandler) CheckIn(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	habitID, ok := parseID(c, "habit")
	if !ok {
		return
	}

	checkin, err := h.habits.CheckIn(c.Request.Context(), userID, habitID)
	if err != nil {
		respondError(c, h.logger, "check in", err)
		return
	}
	c.JSON(http.StatusCreated, checkin)
}

// ListCheckins handles GET /api/habits/:id/checkin
func (h *HabitHandler) ListCheckins(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	habitID, ok := parseID(c, "habit")
	if !ok {
		return
	}

	checkins, err := h.habits.Checkins(c.Request.Context(), userID, habitID)
	if err != nil {
		respondError(c, h.logger, "fetch check-ins", err)
		return
	}
	c.JSON(http.StatusOK, checkins)
}

// History handles GET /api/habits/progress
func (h *HabitHandler) History(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	history, err := h.habits.History(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "fetch habit progress", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": history})
}
