package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"taskadee/internal/model"
	"taskadee/internal/repository"
)

type publishedEvent struct {
	routingKey string
	payload    any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{routingKey: routingKey, payload: payload})
	return nil
}

type memTaskStore struct {
	tasks  map[int]model.Task
	nextID int
	err    error
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: make(map[int]model.Task)}
}

func (s *memTaskStore) List(_ context.Context, userID int, filter repository.TaskFilter) ([]model.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []model.Task{}
	for _, t := range s.tasks {
		if t.UserID == userID && (filter.Status == "" || t.Status == filter.Status) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.SortByDueDate && out[i].DueDate != nil && out[j].DueDate != nil {
			return out[i].DueDate.Before(*out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memTaskStore) Get(_ context.Context, userID, taskID int) (*model.Task, error) {
	t, ok := s.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *memTaskStore) Insert(_ context.Context, t *model.Task) error {
	if s.err != nil {
		return s.err
	}
	s.nextID++
	t.ID = s.nextID
	t.CreatedAt = time.Now()
	s.tasks[t.ID] = *t
	return nil
}

func (s *memTaskStore) Update(_ context.Context, t *model.Task) error {
	if _, ok := s.tasks[t.ID]; !ok {
		return repository.ErrNotFound
	}
	s.tasks[t.ID] = *t
	return nil
}

func (s *memTaskStore) Delete(_ context.Context, userID, taskID int) error {
	t, ok := s.tasks[taskID]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

type memHabitStore struct {
	habits   []model.Habit
	checkins []model.HabitCheckin
	err      error
}

func (s *memHabitStore) ListByUser(_ context.Context, userID int) ([]model.Habit, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []model.Habit{}
	for _, h := range s.habits {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *memHabitStore) ListWithCheckins(ctx context.Context, userID int) ([]model.HabitWithCheckins, error) {
	habits, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []model.HabitWithCheckins{}
	for _, h := range habits {
		checkins, _ := s.ListCheckins(ctx, h.ID)
		out = append(out, model.HabitWithCheckins{Habit: h, Checkins: checkins})
	}
	return out, nil
}

func (s *memHabitStore) LastCheckins(ctx context.Context, userID int) (map[int]model.Date, error) {
	habits, err := s.ListWithCheckins(ctx, userID)
	if err != nil {
		return nil, err
	}
	last := make(map[int]model.Date)
	for _, h := range habits {
		if len(h.Checkins) > 0 {
			last[h.ID] = h.Checkins[0].CheckinDate
		}
	}
	return last, nil
}

func (s *memHabitStore) Get(_ context.Context, userID, habitID int) (*model.Habit, error) {
	for _, h := range s.habits {
		if h.ID == habitID && h.UserID == userID {
			return &h, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memHabitStore) Insert(_ context.Context, h *model.Habit) error {
	if s.err != nil {
		return s.err
	}
	h.ID = len(s.habits) + 1
	h.CreatedAt = time.Now()
	s.habits = append(s.habits, *h)
	return nil
}

func (s *memHabitStore) Update(_ context.Context, h *model.Habit) error {
	for i := range s.habits {
		if s.habits[i].ID == h.ID {
			s.habits[i] = *h
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memHabitStore) Delete(_ context.Context, userID, habitID int) error {
	for i, h := range s.habits {
		if h.ID == habitID && h.UserID == userID {
			s.habits = append(s.habits[:i], s.habits[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memHabitStore) InsertCheckin(_ context.Context, habitID int, date model.Date) (*model.HabitCheckin, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, c := range s.checkins {
		if c.HabitID == habitID && c.CheckinDate == date {
			return nil, repository.ErrAlreadyCheckedIn
		}
	}
	c := model.HabitCheckin{ID: len(s.checkins) + 1, HabitID: habitID, CheckinDate: date}
	s.checkins = append(s.checkins, c)
	return &c, nil
}

func (s *memHabitStore) ListCheckins(_ context.Context, habitID int) ([]model.HabitCheckin, error) {
	out := []model.HabitCheckin{}
	for _, c := range s.checkins {
		if c.HabitID == habitID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[j].CheckinDate.Before(out[i].CheckinDate) })
	return out, nil
}

var errStore = errors.New("store unavailable")
