package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	contracts "taskadee/contracts/mq"
	"taskadee/internal/model"
	"taskadee/internal/repository"
)

func newHabitService(now time.Time) (*HabitService, *memHabitStore, *fakePublisher) {
	store := &memHabitStore{}
	pub := &fakePublisher{}
	svc := NewHabitService(store, pub, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc, store, pub
}

func TestHabitServiceCreate(t *testing.T) {
	svc, _, _ := newHabitService(time.Now())
	ctx := context.Background()

	h, err := svc.Create(ctx, 1, "read", "")
	require.NoError(t, err)
	assert.Equal(t, model.FrequencyDaily, h.Frequency)
	assert.NotZero(t, h.ID)

	h, err = svc.Create(ctx, 1, "walk", model.FrequencyWeekly)
	require.NoError(t, err)
	assert.Equal(t, model.FrequencyWeekly, h.Frequency)

	var verr *ValidationError
	_, err = svc.Create(ctx, 1, "", "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = svc.Create(ctx, 1, "swim", "monthly")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "frequency", verr.Field)
}

func TestHabitServiceUpdate(t *testing.T) {
	svc, _, _ := newHabitService(time.Now())
	ctx := context.Background()

	h, err := svc.Create(ctx, 1, "read", "")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, 1, h.ID, HabitPatch{Frequency: ptr(model.FrequencyWeekly)})
	require.NoError(t, err)
	assert.Equal(t, "read", updated.Name)
	assert.Equal(t, model.FrequencyWeekly, updated.Frequency)

	_, err = svc.Update(ctx, 2, h.ID, HabitPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	var verr *ValidationError
	_, err = svc.Update(ctx, 1, h.ID, HabitPatch{Frequency: ptr("hourly")})
	assert.ErrorAs(t, err, &verr)
}

func TestHabitServiceCheckIn(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	now := time.Date(2024, 1, 9, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
	svc, _, pub := newHabitService(now)
	ctx := context.Background()

	h, err := svc.Create(ctx, 1, "read", "")
	require.NoError(t, err)

	c, err := svc.CheckIn(ctx, 1, h.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NewDate(2024, time.January, 10), c.CheckinDate)

	require.Len(t, pub.events, 1)
	assert.Equal(t, contracts.RoutingKeyHabitCheckedIn, pub.events[0].routingKey)
	assert.Equal(t, contracts.HabitCheckedInPayload{
		CheckinID: c.ID,
		HabitID:   h.ID,
		UserID:    1,
		Date:      "2024-01-10",
	}, pub.events[0].payload)

	_, err = svc.CheckIn(ctx, 1, h.ID)
	assert.ErrorIs(t, err, repository.ErrAlreadyCheckedIn)
	assert.Len(t, pub.events, 1)

	_, err = svc.CheckIn(ctx, 2, h.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestHabitServiceListAndHistory(t *testing.T) {
	svc, store, _ := newHabitService(time.Now())
	ctx := context.Background()

	read, err := svc.Create(ctx, 1, "read", "")
	require.NoError(t, err)
	walk, err := svc.Create(ctx, 1, "walk", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, "other", "")
	require.NoError(t, err)

	d1 := model.NewDate(2024, time.January, 1)
	d2 := model.NewDate(2024, time.January, 2)
	_, err = store.InsertCheckin(ctx, read.ID, d1)
	require.NoError(t, err)
	_, err = store.InsertCheckin(ctx, read.ID, d2)
	require.NoError(t, err)

	items, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].LastCheckin)
	assert.Equal(t, d2, *items[0].LastCheckin)
	assert.Nil(t, items[1].LastCheckin)

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []model.HabitCheckinHistory{
		{HabitID: read.ID, HabitName: "read", Checkins: []model.Date{d2, d1}},
		{HabitID: walk.ID, HabitName: "walk", Checkins: []model.Date{}},
	}, history)

	checkins, err := svc.Checkins(ctx, 1, read.ID)
	require.NoError(t, err)
	require.Len(t, checkins, 2)
	assert.Equal(t, d2, checkins[0].CheckinDate)

	_, err = svc.Checkins(ctx, 2, read.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestHabitServiceStoreErrors(t *testing.T) {
	svc, store, _ := newHabitService(time.Now())
	store.err = errStore

	_, err := svc.List(context.Background(), 1)
	assert.ErrorIs(t, err, errStore)
	_, err = svc.History(context.Background(), 1)
	assert.ErrorIs(t, err, errStore)
}
