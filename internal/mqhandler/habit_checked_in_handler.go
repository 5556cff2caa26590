package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	mqcontracts "taskadee/contracts/mq"
	"taskadee/internal/model"
	"taskadee/pkg/logger"
	"taskadee/pkg/metrics"
)

const dedupHandlerName = "habit_streak"

// DefaultStreakMilestones are used when no milestones are configured.
var DefaultStreakMilestones = []int{7, 30, 100}

type HabitLoader interface {
	ListWithCheckins(ctx context.Context, userID int) ([]model.HabitWithCheckins, error)
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Deduper is satisfied by *util.Deduper.
type Deduper interface {
	AcquireOnce(ctx context.Context, handler string, id int) bool
	Release(ctx context.Context, handler string, id int)
}

// HabitCheckedInHandler 消费 habit.checked_in，检测连续打卡里程碑
type HabitCheckedInHandler struct {
	habits     HabitLoader
	publisher  Publisher
	deduper    Deduper
	milestones map[int]struct{}
	logger     *zap.Logger
}

func NewHabitCheckedInHandler(
	habits HabitLoader,
	publisher Publisher,
	deduper Deduper,
	milestones []int,
	logger *zap.Logger,
) *HabitCheckedInHandler {
	if len(milestones) == 0 {
		milestones = DefaultStreakMilestones
	}
	set := make(map[int]struct{}, len(milestones))
	for _, m := range milestones {
		if m > 0 {
			set[m] = struct{}{}
		}
	}
	return &HabitCheckedInHandler{
		habits:     habits,
		publisher:  publisher,
		deduper:    deduper,
		milestones: set,
		logger:     logger,
	}
}

// Handle 返回的错误由 consumer 分类：不可重试的进入 DLQ，可重试的重新入队一次
func (h *HabitCheckedInHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	log := logger.WithTrace(ctx, h.logger)

	var p mqcontracts.HabitCheckedInPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error("Failed to unmarshal HabitCheckedInPayload", zap.Error(err))
		return err
	}
	if p.CheckinID <= 0 || p.UserID <= 0 || p.HabitID <= 0 {
		log.Error("Invalid habit.checked_in event",
			zap.Int("checkin_id", p.CheckinID),
			zap.Int("user_id", p.UserID),
			zap.Int("habit_id", p.HabitID),
		)
		return fmt.Errorf("invalid habit.checked_in event: checkin_id=%d user_id=%d habit_id=%d",
			p.CheckinID, p.UserID, p.HabitID)
	}
	date, err := model.ParseDate(p.Date)
	if err != nil {
		log.Error("Invalid check-in date", zap.String("date", p.Date), zap.Error(err))
		return err
	}

	// Redis 去重
	if !h.deduper.AcquireOnce(ctx, dedupHandlerName, p.CheckinID) {
		log.Info("Duplicate habit.checked_in event skipped",
			zap.Int("checkin_id", p.CheckinID),
			zap.Int("habit_id", p.HabitID),
		)
		return nil
	}

	if err := h.process(ctx, log, p, date); err != nil {
		h.deduper.Release(ctx, dedupHandlerName, p.CheckinID)
		return err
	}
	return nil
}

func (h *HabitCheckedInHandler) process(ctx context.Context, log *zap.Logger, p mqcontracts.HabitCheckedInPayload, date model.Date) error {
	habits, err := h.habits.ListWithCheckins(ctx, p.UserID)
	if err != nil {
		log.Error("Failed to load habits",
			zap.Int("user_id", p.UserID),
			zap.Error(err),
		)
		return err
	}

	habit, ok := findHabit(habits, p.HabitID)
	if !ok {
		// 打卡之后习惯已被删除
		log.Info("Habit no longer exists, skipping",
			zap.Int("habit_id", p.HabitID),
			zap.Int("user_id", p.UserID),
		)
		return nil
	}

	streak := runEndingOn(habit, date)
	if _, hit := h.milestones[streak]; !hit {
		log.Debug("No streak milestone",
			zap.Int("habit_id", p.HabitID),
			zap.Int("streak", streak),
		)
		return nil
	}

	if err := h.publisher.Publish(ctx, mqcontracts.RoutingKeyHabitStreakMilestone, mqcontracts.HabitStreakMilestonePayload{
		HabitID:   habit.ID,
		UserID:    habit.UserID,
		HabitName: habit.Name,
		Streak:    streak,
		Date:      date.String(),
	}); err != nil {
		log.Error("Failed to publish streak milestone",
			zap.Int("habit_id", p.HabitID),
			zap.Error(err),
		)
		return err
	}
	metrics.IncrementStreakMilestone(strconv.Itoa(streak))

	log.Info("Habit streak milestone reached",
		zap.Int("habit_id", habit.ID),
		zap.Int("user_id", habit.UserID),
		zap.Int("streak", streak),
		zap.Stringer("date", date),
	)
	return nil
}

func findHabit(habits []model.HabitWithCheckins, habitID int) (model.HabitWithCheckins, bool) {
	for _, h := range habits {
		if h.ID == habitID {
			return h, true
		}
	}
	return model.HabitWithCheckins{}, false
}

// runEndingOn counts the consecutive check-in days ending on date. Check-ins after
// date are ignored, so a late event sees the streak as it was that day.
func runEndingOn(h model.HabitWithCheckins, date model.Date) int {
	days := make(map[model.Date]struct{}, len(h.Checkins))
	for _, c := range h.Checkins {
		if c.HabitID == h.ID {
			days[c.CheckinDate] = struct{}{}
		}
	}
	run := 0
	for d := date; ; d = d.AddDays(-1) {
		if _, ok := days[d]; !ok {
			return run
		}
		run++
	}
}
