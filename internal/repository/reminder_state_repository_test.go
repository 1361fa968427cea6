package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
)

func sampleReminder() models.ReminderState {
	next := time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC)
	return models.ReminderState{
		Status:      models.ReminderScheduled,
		Token:       "3f1c",
		BroadcastID: 42,
		FireCount:   1,
		MaxFires:    4,
		Interval:    15 * time.Minute,
		NextFireAt:  &next,
		UpdatedAt:   next.Add(-15 * time.Minute),
	}
}

func TestReminderStateRepositoryRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := NewReminderStateRepository(client, time.Hour, nil)
	ctx := context.Background()

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	want := sampleReminder()
	require.NoError(t, repo.Save(ctx, want))
	assert.Equal(t, time.Hour, mr.TTL(reminderStateKey))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Token, got.Token)
	assert.Equal(t, want.Interval, got.Interval)
	assert.True(t, want.NextFireAt.Equal(*got.NextFireAt))

	require.NoError(t, repo.Clear(ctx))
	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestReminderStateRepositoryRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	repo := NewReminderStateRepository(client, time.Hour, nil)

	mr.Close()
	err := repo.Save(context.Background(), sampleReminder())
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestReminderStateRepositoryMemoryFallback(t *testing.T) {
	repo := NewReminderStateRepository(nil, 0, nil)
	ctx := context.Background()

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	require.NoError(t, repo.Save(ctx, sampleReminder()))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.BroadcastID)

	require.NoError(t, repo.Clear(ctx))
	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}
