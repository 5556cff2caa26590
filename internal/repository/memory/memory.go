// Package memory provides in-process task and habit stores with the same contracts
// as the Postgres repositories. Used for local runs without a database and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskadee/internal/model"
	"taskadee/internal/repository"
)

type TaskStore struct {
	mu     sync.RWMutex
	tasks  []model.Task
	nextID int
	now    func() time.Time
}

func NewTaskStore() *TaskStore {
	return &TaskStore{now: time.Now}
}

// SetClock replaces the clock used to stamp created_at.
func (s *TaskStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *TaskStore) Insert(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t.ID = s.nextID
	t.CreatedAt = s.now().UTC()
	s.tasks = append(s.tasks, *t)
	return nil
}

func (s *TaskStore) ListByUser(ctx context.Context, userID int) ([]model.Task, error) {
	return s.List(ctx, userID, repository.TaskFilter{})
}

func (s *TaskStore) List(_ context.Context, userID int, filter repository.TaskFilter) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Task{}
	for _, t := range s.tasks {
		if t.UserID != userID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	if filter.SortByDueDate {
		// NULLS LAST, ties by id
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DueDate, out[j].DueDate
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			}
			return a.Before(*b)
		})
	}
	return out, nil
}

func (s *TaskStore) Get(_ context.Context, userID, taskID int) (*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(userID, taskID)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	t := s.tasks[i]
	return &t, nil
}

func (s *TaskStore) Update(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(t.UserID, t.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	t.CreatedAt = s.tasks[i].CreatedAt
	s.tasks[i] = *t
	return nil
}

func (s *TaskStore) Delete(_ context.Context, userID, taskID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(userID, taskID)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return nil
}

func (s *TaskStore) index(userID, taskID int) int {
	for i, t := range s.tasks {
		if t.ID == taskID && t.UserID == userID {
			return i
		}
	}
	return -1
}

type HabitStore struct {
	mu            sync.RWMutex
	habits        []model.Habit
	checkins      []model.HabitCheckin
	nextHabitID   int
	nextCheckinID int
	now           func() time.Time
}

func NewHabitStore() *HabitStore {
	return &HabitStore{now: time.Now}
}

// SetClock replaces the clock used to stamp created_at.
func (s *HabitStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *HabitStore) Insert(_ context.Context, h *model.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHabitID++
	h.ID = s.nextHabitID
	h.CreatedAt = s.now().UTC()
	s.habits = append(s.habits, *h)
	return nil
}

func (s *HabitStore) ListByUser(_ context.Context, userID int) ([]model.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byUser(userID), nil
}

func (s *HabitStore) ListWithCheckins(_ context.Context, userID int) ([]model.HabitWithCheckins, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	habits := s.byUser(userID)
	out := make([]model.HabitWithCheckins, 0, len(habits))
	for _, h := range habits {
		out = append(out, model.HabitWithCheckins{Habit: h, Checkins: s.checkinsOf(h.ID)})
	}
	return out, nil
}

func (s *HabitStore) LastCheckins(_ context.Context, userID int) (map[int]model.Date, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	last := make(map[int]model.Date)
	for _, h := range s.byUser(userID) {
		if c := s.checkinsOf(h.ID); len(c) > 0 {
			last[h.ID] = c[0].CheckinDate
		}
	}
	return last, nil
}

func (s *HabitStore) Get(_ context.Context, userID, habitID int) (*model.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(userID, habitID)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	h := s.habits[i]
	return &h, nil
}

func (s *HabitStore) Update(_ context.Context, h *model.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(h.UserID, h.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	h.CreatedAt = s.habits[i].CreatedAt
	s.habits[i] = *h
	return nil
}

// Delete removes the habit and its check-ins.
func (s *HabitStore) Delete(_ context.Context, userID, habitID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(userID, habitID)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.habits = append(s.habits[:i], s.habits[i+1:]...)

	kept := s.checkins[:0]
	for _, c := range s.checkins {
		if c.HabitID != habitID {
			kept = append(kept, c)
		}
	}
	s.checkins = kept
	return nil
}

func (s *HabitStore) InsertCheckin(_ context.Context, habitID int, date model.Date) (*model.HabitCheckin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.checkins {
		if c.HabitID == habitID && c.CheckinDate == date {
			return nil, repository.ErrAlreadyCheckedIn
		}
	}
	s.nextCheckinID++
	c := model.HabitCheckin{ID: s.nextCheckinID, HabitID: habitID, CheckinDate: date}
	s.checkins = append(s.checkins, c)
	return &c, nil
}

func (s *HabitStore) ListCheckins(_ context.Context, habitID int) ([]model.HabitCheckin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkinsOf(habitID), nil
}

func (s *HabitStore) byUser(userID int) []model.Habit {
	out := []model.Habit{}
	for _, h := range s.habits {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out
}

// checkinsOf returns the habit's check-ins, most recent first.
func (s *HabitStore) checkinsOf(habitID int) []model.HabitCheckin {
	out := []model.HabitCheckin{}
	for _, c := range s.checkins {
		if c.HabitID == habitID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[j].CheckinDate.Before(out[i].CheckinDate)
	})
	return out
}

func (s *HabitStore) index(userID, habitID int) int {
	for i, h := range s.habits {
		if h.ID == habitID && h.UserID == userID {
			return i
		}
	}
	return -1
}
