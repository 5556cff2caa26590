package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskadee/internal/model"
	"taskadee/pkg/logger"
	"taskadee/pkg/metrics"
)

type ProgressComputer interface {
	ComputeProgress(ctx context.Context, userID int, reference time.Time) (*model.ProgressReport, error)
}

type ProgressHandler struct {
	engine ProgressComputer
	logger *zap.Logger
	now    func() time.Time
}

func NewProgressHandler(engine ProgressComputer, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{engine: engine, logger: logger, now: time.Now}
}

type progressQuery struct {
	Date string `form:"date" binding:"omitempty,isodate"`
}

// GetProgress handles GET /api/progress[?date=YYYY-MM-DD]
// 不带 date 时以当前时刻（UTC）为参考，带 date 时以该日 UTC 零点为参考
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var q progressQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindingError(c, err)
		return
	}

	reference := h.now().UTC()
	if q.Date != "" {
		d, err := model.ParseDate(q.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		reference = d.In(time.UTC)
	}

	start := time.Now()
	report, err := h.engine.ComputeProgress(c.Request.Context(), userID, reference)
	metrics.RecordProgressCompute(time.Since(start))
	if err != nil {
		respondError(c, h.logger, "compute progress", err)
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Debug("GetProgress: success",
		zap.Int("user_id", userID),
		zap.Time("reference", reference),
		zap.Int("habit_count", len(report.Habits.PerHabit)),
	)
	c.JSON(http.StatusOK, report)
}
