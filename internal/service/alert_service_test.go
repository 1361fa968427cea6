package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cellbroadcast-api/internal/dto"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	appErrors "github.com/noah-isme/cellbroadcast-api/pkg/errors"
)

type recordingReadMarker struct {
	ids []int64
	err error
}

func (r *recordingReadMarker) MarkRead(ctx context.Context, id int64) error {
	r.ids = append(r.ids, id)
	return r.err
}

func TestAlertServiceDismissCancelsReminder(t *testing.T) {
	f := newReminderFixture(ReminderConfig{})
	marker := &recordingReadMarker{}
	svc := NewAlertService(f.scheduler, marker, nil)
	ctx := context.Background()

	_, err := f.scheduler.Schedule(ctx, reminderRecord(5), "2")
	require.NoError(t, err)
	assert.Equal(t, models.ReminderScheduled, svc.Reminder().Status)

	state, err := svc.Dismiss(ctx, dto.DismissRequest{BroadcastID: 5, MarkRead: true})
	require.NoError(t, err)
	assert.Equal(t, models.ReminderIdle, state.Status)
	assert.Equal(t, []int64{5}, marker.ids)
	assert.Zero(t, f.alarms.pending())

	state, err = svc.Dismiss(ctx, dto.DismissRequest{BroadcastID: 5})
	require.NoError(t, err)
	assert.Equal(t, models.ReminderIdle, state.Status)
	assert.Len(t, marker.ids, 1)
}

func TestAlertServiceDismissReportsMarkReadFailure(t *testing.T) {
	f := newReminderFixture(ReminderConfig{})
	svc := NewAlertService(f.scheduler, &recordingReadMarker{err: appErrors.Clone(appErrors.ErrNotFound, "broadcast not found")}, nil)

	_, err := svc.Dismiss(context.Background(), dto.DismissRequest{BroadcastID: 1, MarkRead: true})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
