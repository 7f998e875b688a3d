package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/pkg/logger"
)

// dateLayout matches the calendar-date strings stored on appointments.
const dateLayout = "2006-01-02"

// Reminder enqueues one appointment_reminder dispatch task for every
// appointment scheduled for the next day. It only produces outbox events;
// delivery is the dispatch worker's job.
type Reminder struct {
	appointments repository.AppointmentRepository
	outbox       repository.OutboxRepository
	logger       *logger.Logger
	cron         *cron.Cron
	now          func() time.Time
}

func NewReminder(appointments repository.AppointmentRepository, outbox repository.OutboxRepository, logger *logger.Logger) *Reminder {
	return &Reminder{
		appointments: appointments,
		outbox:       outbox,
		logger:       logger,
		cron:         cron.New(),
		now:          time.Now,
	}
}

// Start schedules the reminder sweep with the given cron expression.
func (r *Reminder) Start(spec string) error {
	_, err := r.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		r.Sweep(ctx)
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("reminder scheduler started", "spec", spec)
	return nil
}

func (r *Reminder) Stop() {
	r.cron.Stop()
}

// Sweep enqueues reminders for tomorrow's scheduled appointments.
func (r *Reminder) Sweep(ctx context.Context) {
	date := r.TargetDate()

	appointments, err := r.appointments.ListScheduledOnDate(ctx, date)
	if err != nil {
		r.logger.Error(err, "failed to list appointments for reminders")
		return
	}

	enqueued := 0
	for _, apt := range appointments {
		payload, err := json.Marshal(model.NotificationTask{
			AppointmentID: apt.ID,
			Type:          model.NotificationAppointmentReminder,
		})
		if err != nil {
			r.logger.Error(err, "failed to marshal reminder task")
			continue
		}
		err = r.outbox.Create(ctx, &model.OutboxEvent{
			EventType: model.EventTypeNotificationDispatch,
			Payload:   payload,
		})
		if err != nil {
			r.logger.Error(err, "failed to enqueue reminder",
				"appointment_id", apt.ID.String())
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		r.logger.Info("enqueued appointment reminders", "date", date, "count", enqueued)
	}
}

// TargetDate returns tomorrow's date string.
func (r *Reminder) TargetDate() string {
	return r.now().AddDate(0, 0, 1).Format(dateLayout)
}
