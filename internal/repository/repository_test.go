package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskadee/internal/model"
)

// setupTestDB connects to TEST_DATABASE_URL, applies the reference schema and
// truncates the tables. Tests are skipped when the variable is unset.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping repository integration tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../db/schema.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `TRUNCATE habit_checkins, habits, tasks RESTART IDENTITY`)
	require.NoError(t, err)
	return pool
}

func TestTaskRepositoryCRUD(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewTaskRepository(pool, zap.NewNop())
	ctx := context.Background()

	due := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	first := &model.Task{UserID: 1, Title: "write report", DueDate: &due, Status: model.TaskStatusPending}
	second := &model.Task{UserID: 1, Title: "no due date", Status: model.TaskStatusComplete}
	other := &model.Task{UserID: 2, Title: "someone else", Status: model.TaskStatusPending}
	for _, task := range []*model.Task{first, second, other} {
		require.NoError(t, repo.Insert(ctx, task))
		assert.NotZero(t, task.ID)
	}

	tasks, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, first.ID, tasks[0].ID)
	assert.True(t, due.Equal(*tasks[0].DueDate))

	pending, err := repo.List(ctx, 1, TaskFilter{Status: model.TaskStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "write report", pending[0].Title)

	first.Status = model.TaskStatusComplete
	require.NoError(t, repo.Update(ctx, first))
	got, err := repo.Get(ctx, 1, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusComplete, got.Status)

	_, err = repo.Get(ctx, 2, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, 1, first.ID))
	assert.ErrorIs(t, repo.Delete(ctx, 1, first.ID), ErrNotFound)
}

func TestHabitRepositoryCheckins(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewHabitRepository(pool, zap.NewNop())
	ctx := context.Background()

	read := &model.Habit{UserID: 1, Name: "read", Frequency: model.FrequencyDaily}
	walk := &model.Habit{UserID: 1, Name: "walk", Frequency: model.FrequencyWeekly}
	require.NoError(t, repo.Insert(ctx, read))
	require.NoError(t, repo.Insert(ctx, walk))

	d1 := model.NewDate(2024, time.January, 1)
	d2 := model.NewDate(2024, time.January, 2)
	_, err := repo.InsertCheckin(ctx, read.ID, d1)
	require.NoError(t, err)
	c, err := repo.InsertCheckin(ctx, read.ID, d2)
	require.NoError(t, err)
	assert.Equal(t, d2, c.CheckinDate)

	_, err = repo.InsertCheckin(ctx, read.ID, d2)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	habits, err := repo.ListWithCheckins(ctx, 1)
	require.NoError(t, err)
	require.Len(t, habits, 2)
	assert.Equal(t, "read", habits[0].Name)
	require.Len(t, habits[0].Checkins, 2)
	assert.Equal(t, d2, habits[0].Checkins[0].CheckinDate)
	assert.Empty(t, habits[1].Checkins)

	last, err := repo.LastCheckins(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[int]model.Date{read.ID: d2}, last)

	require.NoError(t, repo.Delete(ctx, 1, read.ID))
	checkins, err := repo.ListCheckins(ctx, read.ID)
	require.NoError(t, err)
	assert.Empty(t, checkins)
}
