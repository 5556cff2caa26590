package progress

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskadee/internal/model"
)

type fakeTasks struct {
	tasks []model.Task
	err   error
	calls []int
}

func (f *fakeTasks) ListByUser(_ context.Context, userID int) ([]model.Task, error) {
	f.calls = append(f.calls, userID)
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Task
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeHabits struct {
	habits []model.HabitWithCheckins
	err    error
}

func (f *fakeHabits) ListWithCheckins(_ context.Context, userID int) ([]model.HabitWithCheckins, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.HabitWithCheckins
	for _, h := range f.habits {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func task(id, userID int, status string, due *time.Time) model.Task {
	return model.Task{ID: id, UserID: userID, Title: "t", Status: status, DueDate: due}
}

func TestComputeProgressEmpty(t *testing.T) {
	engine := NewEngine(&fakeTasks{}, &fakeHabits{}, zap.NewNop())
	ref := noon("2024-01-10")

	report, err := engine.ComputeProgress(context.Background(), 1, ref)
	require.NoError(t, err)

	assert.Zero(t, report.Tasks.Completed)
	assert.Zero(t, report.Tasks.Pending)
	assert.Zero(t, report.Tasks.Overdue)
	assert.NotNil(t, report.Habits.PerHabit)
	assert.Empty(t, report.Habits.PerHabit)

	for _, series := range [][]model.TrendPoint{report.Tasks.TrendLast7, report.Tasks.TrendLast30, report.Tasks.TrendLast90} {
		for _, p := range series {
			assert.Zero(t, p.Completed)
		}
	}
}

func TestComputeProgressTaskCounts(t *testing.T) {
	ref := *at("2024-01-10T12:00:00Z")
	tasks := &fakeTasks{tasks: []model.Task{
		task(1, 1, model.TaskStatusComplete, at("2024-01-09T08:00:00Z")),
		task(2, 1, model.TaskStatusComplete, nil),
		task(3, 1, model.TaskStatusPending, at("2024-01-10T11:59:59Z")), // overdue by one second
		task(4, 1, model.TaskStatusPending, at("2024-01-10T12:00:00Z")), // due exactly now
		task(5, 1, model.TaskStatusPending, at("2024-01-10T18:00:00Z")), // later today
		task(6, 1, model.TaskStatusPending, nil),
		task(7, 1, model.TaskStatusComplete, at("2024-01-01T00:00:00Z")), // complete, past due
		task(8, 2, model.TaskStatusPending, at("2023-01-01T00:00:00Z")), // other user
	}}
	engine := NewEngine(tasks, &fakeHabits{}, zap.NewNop())

	report, err := engine.ComputeProgress(context.Background(), 1, ref)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Tasks.Completed)
	assert.Equal(t, 4, report.Tasks.Pending)
	assert.Equal(t, 1, report.Tasks.Overdue)
	assert.Equal(t, []int{1}, tasks.calls)
}

func TestComputeIgnoresOtherUsers(t *testing.T) {
	ref := noon("2024-01-10")
	tasks := []model.Task{
		task(1, 1, model.TaskStatusComplete, at("2024-01-10T08:00:00Z")),
		task(2, 2, model.TaskStatusComplete, at("2024-01-10T08:00:00Z")),
		task(3, 2, model.TaskStatusPending, at("2024-01-01T08:00:00Z")),
	}
	other := habitWith("2024-01-01", "2024-01-10")
	other.UserID = 2

	report := Compute(1, ref, tasks, []model.HabitWithCheckins{other})

	assert.Equal(t, 1, report.Tasks.Completed)
	assert.Zero(t, report.Tasks.Pending)
	assert.Zero(t, report.Tasks.Overdue)
	assert.Equal(t, 1, report.Tasks.TrendLast7[6].Completed)
	assert.Empty(t, report.Habits.PerHabit)
}

func TestComputeProgressTrendShape(t *testing.T) {
	ref := noon("2024-03-01")
	report := Compute(1, ref, nil, nil)

	series := map[int][]model.TrendPoint{
		7:  report.Tasks.TrendLast7,
		30: report.Tasks.TrendLast30,
		90: report.Tasks.TrendLast90,
	}
	for n, points := range series {
		require.Len(t, points, n)
		assert.Equal(t, day("2024-03-01"), points[n-1].Date, "window %d ends at reference day", n)
		for i := 1; i < len(points); i++ {
			assert.Equal(t, 1, points[i].Date.DaysSince(points[i-1].Date), "window %d step %d", n, i)
		}
	}
	assert.Equal(t, day("2024-02-24"), report.Tasks.TrendLast7[0].Date)
	assert.Equal(t, day("2024-02-01"), report.Tasks.TrendLast30[0].Date)
}

func TestComputeProgressTrendBucketsByDueDate(t *testing.T) {
	ref := noon("2024-01-10")
	tasks := []model.Task{
		task(1, 1, model.TaskStatusComplete, at("2024-01-10T01:00:00Z")),
		task(2, 1, model.TaskStatusComplete, at("2024-01-10T23:00:00Z")),
		task(3, 1, model.TaskStatusComplete, at("2024-01-04T10:00:00Z")),
		task(4, 1, model.TaskStatusComplete, at("2024-01-03T10:00:00Z")), // outside 7-day window
		task(5, 1, model.TaskStatusComplete, at("2024-01-12T10:00:00Z")), // future due date
		task(6, 1, model.TaskStatusPending, at("2024-01-10T10:00:00Z")),
	}

	report := Compute(1, ref, tasks, nil)

	week := report.Tasks.TrendLast7
	assert.Equal(t, day("2024-01-04"), week[0].Date)
	assert.Equal(t, 1, week[0].Completed)
	assert.Equal(t, 2, week[6].Completed)

	total := 0
	for _, p := range week {
		total += p.Completed
	}
	assert.Equal(t, 3, total)

	month := report.Tasks.TrendLast30
	assert.Equal(t, 1, month[len(month)-8].Completed, "2024-01-03 is inside the 30 day window")
	assert.Equal(t, 5, report.Tasks.Completed)
}

func TestComputeProgressTrendUsesReferenceLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 2024-01-10T02:00Z is still Jan 9 in UTC-5.
	tasks := []model.Task{task(1, 1, model.TaskStatusComplete, at("2024-01-10T02:00:00Z"))}
	ref := time.Date(2024, 1, 10, 9, 0, 0, 0, loc)

	report := Compute(1, ref, tasks, nil)

	week := report.Tasks.TrendLast7
	assert.Equal(t, day("2024-01-10"), week[6].Date)
	assert.Equal(t, 0, week[6].Completed)
	assert.Equal(t, 1, week[5].Completed)
}

func TestComputeProgressHabitOrder(t *testing.T) {
	first := habitWith("2024-01-01", "2024-01-09", "2024-01-10")
	second := habitWith("2024-01-05")
	second.ID = 2
	second.Name = "stretch"

	engine := NewEngine(&fakeTasks{}, &fakeHabits{habits: []model.HabitWithCheckins{first, second}}, zap.NewNop())
	report, err := engine.ComputeProgress(context.Background(), 7, noon("2024-01-10"))
	require.NoError(t, err)

	require.Len(t, report.Habits.PerHabit, 2)
	assert.Equal(t, model.HabitSummary{ID: 1, Name: "read", CurrentStreak: 2, LongestStreak: 2, CompletionRate: 20}, report.Habits.PerHabit[0])
	assert.Equal(t, model.HabitSummary{ID: 2, Name: "stretch"}, report.Habits.PerHabit[1])
}

func TestComputeProgressStoreErrors(t *testing.T) {
	boom := errors.New("connection refused")

	_, err := NewEngine(&fakeTasks{err: boom}, &fakeHabits{}, zap.NewNop()).
		ComputeProgress(context.Background(), 1, time.Now())
	assert.Same(t, boom, err)

	_, err = NewEngine(&fakeTasks{}, &fakeHabits{err: boom}, zap.NewNop()).
		ComputeProgress(context.Background(), 1, time.Now())
	assert.Same(t, boom, err)
}

func TestProgressReportJSON(t *testing.T) {
	h := habitWith("2024-01-01", "2024-01-01")
	report := Compute(7, noon("2024-01-01"), []model.Task{
		task(1, 7, model.TaskStatusComplete, at("2024-01-01T09:00:00Z")),
	}, []model.HabitWithCheckins{h})

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded struct {
		Tasks struct {
			Completed  int `json:"completed"`
			Pending    int `json:"pending"`
			Overdue    int `json:"overdue"`
			TrendLast7 []struct {
				Date      string `json:"date"`
				Completed int    `json:"completed"`
			} `json:"trend_last_7"`
			TrendLast30 []json.RawMessage `json:"trend_last_30"`
			TrendLast90 []json.RawMessage `json:"trend_last_90"`
		} `json:"tasks"`
		Habits struct {
			PerHabit []map[string]any `json:"per_habit"`
		} `json:"habits"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, 1, decoded.Tasks.Completed)
	require.Len(t, decoded.Tasks.TrendLast7, 7)
	assert.Equal(t, "2024-01-01", decoded.Tasks.TrendLast7[6].Date)
	assert.Equal(t, 1, decoded.Tasks.TrendLast7[6].Completed)
	assert.Len(t, decoded.Tasks.TrendLast30, 30)
	assert.Len(t, decoded.Tasks.TrendLast90, 90)
	require.Len(t, decoded.Habits.PerHabit, 1)
	assert.Equal(t, map[string]any{
		"id":              float64(1),
		"name":            "read",
		"current_streak":  float64(1),
		"longest_streak":  float64(1),
		"completion_rate": float64(100),
	}, decoded.Habits.PerHabit[0])
}
