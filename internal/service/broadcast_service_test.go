package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	"github.com/noah-isme/cellbroadcast-api/internal/policy"
	"github.com/noah-isme/cellbroadcast-api/internal/repository"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
)

type broadcastFixture struct {
	repo    *repository.BroadcastRepository
	env     *staticEnvironment
	metrics *countingMetrics
	svc     *BroadcastService
	now     time.Time
}

func newBroadcastFixture(t *testing.T) *broadcastFixture {
	t.Helper()
	f := &broadcastFixture{
		repo:    repository.NewBroadcastRepository(newServiceDB(t), nil),
		env:     &staticEnvironment{env: defaultEnv()},
		metrics: newCountingMetrics(),
		now:     receivedAt.Add(time.Hour),
	}
	f.svc = NewBroadcastService(f.repo, newTestClassifier(), f.env, f.metrics, nil, nil)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *broadcastFixture) insert(t *testing.T, raw models.RawBroadcast) models.BroadcastRecord {
	t.Helper()
	record := newTestClassifier().Record(raw)
	_, err := f.repo.Insert(context.Background(), &record)
	require.NoError(t, err)
	return record
}

func TestBroadcastServiceListPaging(t *testing.T) {
	f := newBroadcastFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		raw := earthquakeRaw()
		raw.SerialNumber = i
		raw.ReceivedAt = receivedAt.Add(time.Duration(i) * time.Minute)
		f.insert(t, raw)
	}

	records, page, err := f.svc.List(ctx, dto.BroadcastFilter{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, &models.Pagination{Page: 1, PageSize: 2, TotalCount: 3}, page)
	assert.Equal(t, 2, records[0].SerialNumber)

	_, page, err = f.svc.List(ctx, dto.BroadcastFilter{})
	require.NoError(t, err)
	assert.Equal(t, defaultBroadcastPageSize, page.PageSize)

	_, _, err = f.svc.List(ctx, dto.BroadcastFilter{PageSize: 500})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestBroadcastServiceGetRecomputesPolicy(t *testing.T) {
	f := newBroadcastFixture(t)
	ctx := context.Background()
	raw := cmasRaw(models.CmasClassExtremeThreat, policy.MessageIDCmasExtremeFirst)
	raw.Cmas.Severity = models.CmasSeverityExtreme
	record := f.insert(t, raw)

	detail, err := f.svc.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, detail.Policy.PlayTone)
	assert.Equal(t, models.TitleCmasExtreme, detail.Policy.DialogTitle)
	assert.Contains(t, detail.FormattedBody, "Severity: Extreme")

	f.env.set(func(env *AlertEnvironment) {
		env.Prefs.AlertTone = false
		env.Carrier.AlertToneEnable = true
	})
	detail, err = f.svc.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.False(t, detail.Policy.PlayTone)

	_, err = f.svc.Get(ctx, 999)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestBroadcastServiceReadAndDelete(t *testing.T) {
	f := newBroadcastFixture(t)
	ctx := context.Background()
	a := f.insert(t, earthquakeRaw())
	rawB := cmasRaw(models.CmasClassSevereThreat, policy.MessageIDCmasSevereFirst)
	rawB.ReceivedAt = receivedAt.Add(time.Minute)
	b := f.insert(t, rawB)

	n, err := f.svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, f.svc.MarkRead(ctx, a.ID))
	assert.ErrorIs(t, f.svc.MarkRead(ctx, 404), appErrors.ErrNotFound)

	affected, err := f.svc.MarkReadByTime(ctx, dto.MarkReadByTimeRequest{DeliveryTime: b.DeliveryTime})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	_, err = f.svc.MarkReadByTime(ctx, dto.MarkReadByTimeRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	require.NoError(t, f.svc.Delete(ctx, a.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, a.ID), appErrors.ErrNotFound)

	records, _, err := f.svc.List(ctx, dto.BroadcastFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	records, _, err = f.svc.List(ctx, dto.BroadcastFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	soft, err := f.svc.DeleteAll(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), soft)

	// soft-deleted rows older than the retention window are purged
	f.now = f.now.Add(13 * time.Hour)
	purged, err := f.svc.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)

	f.insert(t, earthquakeRaw())
	hard, err := f.svc.DeleteAll(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), hard)
}

func TestBroadcastServiceStoreFailure(t *testing.T) {
	db := newServiceDB(t)
	metrics := newCountingMetrics()
	svc := NewBroadcastService(repository.NewBroadcastRepository(db, nil), newTestClassifier(), &staticEnvironment{env: defaultEnv()}, metrics, nil, nil)
	require.NoError(t, db.Close())

	_, err := svc.UnreadCount(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrStorageUnavailable)
	_, _, err = svc.List(context.Background(), dto.BroadcastFilter{})
	assert.ErrorIs(t, err, appErrors.ErrStorageUnavailable)
	assert.Equal(t, 1, metrics.storeErrors["unread_count"])
	assert.Equal(t, 1, metrics.storeErrors["list"])
}
