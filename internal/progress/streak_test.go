package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"taskadee/internal/model"
)

func day(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func noon(s string) time.Time {
	return day(s).In(time.UTC).Add(12 * time.Hour)
}

func habitWith(created string, dates ...string) model.HabitWithCheckins {
	h := model.HabitWithCheckins{
		Habit: model.Habit{
			ID:        1,
			UserID:    7,
			Name:      "read",
			Frequency: model.FrequencyDaily,
			CreatedAt: noon(created),
		},
	}
	for i, d := range dates {
		h.Checkins = append(h.Checkins, model.HabitCheckin{ID: i + 1, HabitID: 1, CheckinDate: day(d)})
	}
	return h
}

func TestSummarizeHabit(t *testing.T) {
	tests := []struct {
		name      string
		habit     model.HabitWithCheckins
		reference string
		current   int
		longest   int
		rate      int
	}{
		{
			name:      "three consecutive days ending today",
			habit:     habitWith("2024-01-01", "2024-01-01", "2024-01-02", "2024-01-03"),
			reference: "2024-01-03",
			current:   3,
			longest:   3,
			rate:      100,
		},
		{
			name:      "two isolated days",
			habit:     habitWith("2024-01-01", "2024-01-01", "2024-01-05"),
			reference: "2024-01-05",
			current:   1,
			longest:   1,
			rate:      40,
		},
		{
			name:      "stale streak keeps longest",
			habit:     habitWith("2023-12-30", "2023-12-30", "2023-12-31", "2024-01-01"),
			reference: "2024-01-10",
			current:   0,
			longest:   3,
			rate:      25,
		},
		{
			name:      "last check-in yesterday still counts",
			habit:     habitWith("2024-01-01", "2024-01-01", "2024-01-02"),
			reference: "2024-01-03",
			current:   2,
			longest:   2,
			rate:      66,
		},
		{
			name:      "current streak is the run closed last by the walk",
			habit:     habitWith("2024-01-01", "2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-09", "2024-01-10"),
			reference: "2024-01-10",
			current:   4,
			longest:   4,
			rate:      60,
		},
		{
			name:      "created today with one check-in",
			habit:     habitWith("2024-03-01", "2024-03-01"),
			reference: "2024-03-01",
			current:   1,
			longest:   1,
			rate:      100,
		},
		{
			name:      "no check-ins",
			habit:     habitWith("2024-01-01"),
			reference: "2024-01-05",
		},
		{
			name:      "created after reference day",
			habit:     habitWith("2024-02-01", "2024-01-30"),
			reference: "2024-01-30",
			current:   1,
			longest:   1,
			rate:      0,
		},
		{
			name:      "unsorted input",
			habit:     habitWith("2024-01-01", "2024-01-03", "2024-01-01", "2024-01-02"),
			reference: "2024-01-03",
			current:   3,
			longest:   3,
			rate:      100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SummarizeHabit(tt.habit, noon(tt.reference))

			assert.Equal(t, tt.habit.ID, got.ID)
			assert.Equal(t, tt.habit.Name, got.Name)
			assert.Equal(t, tt.current, got.CurrentStreak, "current streak")
			assert.Equal(t, tt.longest, got.LongestStreak, "longest streak")
			assert.Equal(t, tt.rate, got.CompletionRate, "completion rate")
			assert.GreaterOrEqual(t, got.LongestStreak, got.CurrentStreak)
		})
	}
}

func TestSummarizeHabitDuplicateDays(t *testing.T) {
	h := habitWith("2024-01-01", "2024-01-01", "2024-01-02", "2024-01-02", "2024-01-03", "2024-01-03")

	got := SummarizeHabit(h, noon("2024-01-04"))

	assert.Equal(t, 3, got.CurrentStreak)
	assert.Equal(t, 3, got.LongestStreak)
	// 3 distinct days over 4 active days
	assert.Equal(t, 75, got.CompletionRate)
}

func TestSummarizeHabitIgnoresForeignCheckins(t *testing.T) {
	h := habitWith("2024-01-01", "2024-01-01")
	h.Checkins = append(h.Checkins, model.HabitCheckin{ID: 99, HabitID: 2, CheckinDate: day("2024-01-02")})

	got := SummarizeHabit(h, noon("2024-01-02"))

	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, 1, got.LongestStreak)
	assert.Equal(t, 50, got.CompletionRate)
}

func TestSummarizeHabitCreationDayUsesReferenceLocation(t *testing.T) {
	// 23:30 UTC on Jan 1 is already Jan 2 in UTC+2.
	loc := time.FixedZone("UTC+2", 2*60*60)
	h := habitWith("2024-01-01", "2024-01-02")
	h.CreatedAt = time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)

	got := SummarizeHabit(h, time.Date(2024, 1, 2, 9, 0, 0, 0, loc))

	assert.Equal(t, 100, got.CompletionRate)
}

func TestStreaks(t *testing.T) {
	tests := []struct {
		name    string
		days    []string
		current int
		longest int
	}{
		{"single", []string{"2024-01-01"}, 1, 1},
		{"one run", []string{"2024-01-03", "2024-01-02", "2024-01-01"}, 3, 3},
		{"older run is longer", []string{"2024-01-10", "2024-01-05", "2024-01-04", "2024-01-03"}, 3, 3},
		{"newer run is longer", []string{"2024-01-10", "2024-01-09", "2024-01-08", "2024-01-01"}, 1, 3},
		{"across month end", []string{"2024-03-01", "2024-02-29", "2024-02-28"}, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := make([]model.Date, len(tt.days))
			for i, d := range tt.days {
				days[i] = day(d)
			}
			current, longest := streaks(days)
			assert.Equal(t, tt.current, current)
			assert.Equal(t, tt.longest, longest)
		})
	}
}
