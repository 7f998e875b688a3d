package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/pkg/logger"
)

type fakeAppointmentRepo struct {
	scheduled map[string][]*model.Appointment
}

func (f *fakeAppointmentRepo) Create(_ context.Context, _ *model.Appointment) error { return nil }
func (f *fakeAppointmentRepo) GetByID(_ context.Context, _ uuid.UUID) (*model.Appointment, error) {
	return nil, nil
}
func (f *fakeAppointmentRepo) Update(_ context.Context, _ *model.Appointment) error { return nil }
func (f *fakeAppointmentRepo) Delete(_ context.Context, _ uuid.UUID) error          { return nil }
func (f *fakeAppointmentRepo) DeleteByPatient(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}
func (f *fakeAppointmentRepo) ListByDoctor(_ context.Context, _ uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}
func (f *fakeAppointmentRepo) ListByPatient(_ context.Context, _ uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) ListScheduledOnDate(_ context.Context, date string) ([]*model.Appointment, error) {
	return f.scheduled[date], nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepo) MarkProcessed(_ context.Context, _ uuid.UUID) error { return nil }
func (f *fakeOutboxRepo) MarkFailed(_ context.Context, _ uuid.UUID, _ string, _ *time.Time) error {
	return nil
}
func (f *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func TestTargetDateIsTomorrow(t *testing.T) {
	r := NewReminder(&fakeAppointmentRepo{}, &fakeOutboxRepo{}, logger.NewLogger(nil))
	r.now = func() time.Time {
		return time.Date(2026, 8, 31, 23, 30, 0, 0, time.UTC)
	}

	assert.Equal(t, "2026-09-01", r.TargetDate())
}

func TestSweepEnqueuesTomorrowsAppointments(t *testing.T) {
	appointments := &fakeAppointmentRepo{scheduled: map[string][]*model.Appointment{
		"2026-09-01": {
			{Base: model.Base{ID: uuid.New()}, Status: model.AppointmentStatusScheduled},
			{Base: model.Base{ID: uuid.New()}, Status: model.AppointmentStatusScheduled},
		},
		"2026-09-02": {
			{Base: model.Base{ID: uuid.New()}, Status: model.AppointmentStatusScheduled},
		},
	}}
	outbox := &fakeOutboxRepo{}

	r := NewReminder(appointments, outbox, logger.NewLogger(nil))
	r.now = func() time.Time {
		return time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)
	}

	r.Sweep(context.Background())

	require.Len(t, outbox.events, 2)
	for i, e := range outbox.events {
		assert.Equal(t, model.EventTypeNotificationDispatch, e.EventType)

		var task model.NotificationTask
		require.NoError(t, json.Unmarshal(e.Payload, &task))
		assert.Equal(t, model.NotificationAppointmentReminder, task.Type)
		assert.Equal(t, appointments.scheduled["2026-09-01"][i].ID, task.AppointmentID)
	}
}

func TestSweepNoAppointments(t *testing.T) {
	outbox := &fakeOutboxRepo{}
	r := NewReminder(&fakeAppointmentRepo{}, outbox, logger.NewLogger(nil))

	r.Sweep(context.Background())
	assert.Empty(t, outbox.events)
}
