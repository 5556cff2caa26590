package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	contracts "taskadee/contracts/mq"
	"taskadee/internal/model"
	"taskadee/internal/repository"
	"taskadee/pkg/logger"
	"taskadee/pkg/metrics"
)

type HabitStore interface {
	ListByUser(ctx context.Context, userID int) ([]model.Habit, error)
	ListWithCheckins(ctx context.Context, userID int) ([]model.HabitWithCheckins, error)
	LastCheckins(ctx context.Context, userID int) (map[int]model.Date, error)
	Get(ctx context.Context, userID, habitID int) (*model.Habit, error)
	Insert(ctx context.Context, h *model.Habit) error
	Update(ctx context.Context, h *model.Habit) error
	Delete(ctx context.Context, userID, habitID int) error
	InsertCheckin(ctx context.Context, habitID int, date model.Date) (*model.HabitCheckin, error)
	ListCheckins(ctx context.Context, habitID int) ([]model.HabitCheckin, error)
}

// HabitPatch changes only the non-nil fields.
type HabitPatch struct {
	Name      *string
	Frequency *string
}

type HabitService struct {
	store     HabitStore
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewHabitService(store HabitStore, publisher EventPublisher, logger *zap.Logger) *HabitService {
	return &HabitService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns the user's habits with the day of their latest check-in.
func (s *HabitService) List(ctx context.Context, userID int) ([]model.HabitListItem, error) {
	habits, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	last, err := s.store.LastCheckins(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]model.HabitListItem, 0, len(habits))
	for _, h := range habits {
		item := model.HabitListItem{Habit: h}
		if d, ok := last[h.ID]; ok {
			item.LastCheckin = &d
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *HabitService) Create(ctx context.Context, userID int, name, frequency string) (*model.Habit, error) {
	name = strings.TrimSpace(name)
	if err := validateHabitName(name); err != nil {
		return nil, err
	}
	if frequency == "" {
		frequency = model.FrequencyDaily
	}
	if !model.ValidFrequency(frequency) {
		return nil, invalid("frequency", "must be %q or %q", model.FrequencyDaily, model.FrequencyWeekly)
	}

	h := &model.Habit{UserID: userID, Name: name, Frequency: frequency}
	if err := s.store.Insert(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *HabitService) Update(ctx context.Context, userID, habitID int, patch HabitPatch) (*model.Habit, error) {
	h, err := s.store.Get(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateHabitName(name); err != nil {
			return nil, err
		}
		h.Name = name
	}
	if patch.Frequency != nil {
		if !model.ValidFrequency(*patch.Frequency) {
			return nil, invalid("frequency", "must be %q or %q", model.FrequencyDaily, model.FrequencyWeekly)
		}
		h.Frequency = *patch.Frequency
	}
	if err := s.store.Update(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *HabitService) Delete(ctx context.Context, userID, habitID int) error {
	return s.store.Delete(ctx, userID, habitID)
}

// CheckIn records today's (UTC) check-in for a habit owned by the user.
func (s *HabitService) CheckIn(ctx context.Context, userID, habitID int) (*model.HabitCheckin, error) {
	if _, err := s.store.Get(ctx, userID, habitID); err != nil {
		return nil, err
	}

	today := model.DateOf(s.now().UTC())
	c, err := s.store.InsertCheckin(ctx, habitID, today)
	switch {
	case errors.Is(err, repository.ErrAlreadyCheckedIn):
		metrics.IncrementHabitCheckin("duplicate")
		return nil, err
	case err != nil:
		metrics.IncrementHabitCheckin("failed")
		return nil, err
	}
	metrics.IncrementHabitCheckin("recorded")

	logger.WithTrace(ctx, s.logger).Info("Habit checked in",
		zap.Int("user_id", userID),
		zap.Int("habit_id", habitID),
		zap.Stringer("date", today),
	)
	publish(ctx, s.publisher, s.logger, contracts.RoutingKeyHabitCheckedIn, contracts.HabitCheckedInPayload{
		CheckinID: c.ID,
		HabitID:   habitID,
		UserID:    userID,
		Date:      today.String(),
	})
	return c, nil
}

// Checkins returns the check-ins of a habit owned by the user, most recent first.
func (s *HabitService) Checkins(ctx context.Context, userID, habitID int) ([]model.HabitCheckin, error) {
	if _, err := s.store.Get(ctx, userID, habitID); err != nil {
		return nil, err
	}
	return s.store.ListCheckins(ctx, habitID)
}

// History returns the raw check-in days of every habit of the user.
func (s *HabitService) History(ctx context.Context, userID int) ([]model.HabitCheckinHistory, error) {
	habits, err := s.store.ListWithCheckins(ctx, userID)
	if err != nil {
		return nil, err
	}
	history := make([]model.HabitCheckinHistory, 0, len(habits))
	for _, h := range habits {
		days := make([]model.Date, 0, len(h.Checkins))
		for _, c := range h.Checkins {
			days = append(days, c.CheckinDate)
		}
		history = append(history, model.HabitCheckinHistory{
			HabitID:   h.ID,
			HabitName: h.Name,
			Checkins:  days,
		})
	}
	return history, nil
}

func validateHabitName(name string) error {
	if name == "" {
		return invalid("name", "is required")
	}
	if len([]rune(name)) > maxTitleLength {
		return invalid("name", "must be at most %d characters", maxTitleLength)
	}
	return nil
}
