package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/pkg/email"
	"github.com/medisched/scheduler-api/pkg/logger"
	"github.com/medisched/scheduler-api/pkg/messaging"
	"github.com/medisched/scheduler-api/pkg/metrics"
)

// BroadcastChannel is the redis channel stored notifications are mirrored
// to for in-app consumers.
const BroadcastChannel = "notifications"

// Dispatcher turns a queued lifecycle event into exactly one stored
// notification. It runs only from the outbox processor, never from a
// client request.
type Dispatcher struct {
	notifications repository.NotificationRepository
	appointments  repository.AppointmentRepository
	patients      repository.PatientRepository
	doctors       repository.DoctorRepository
	broker        messaging.Broker
	mailer        email.Sender
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

func NewDispatcher(
	notifications repository.NotificationRepository,
	appointments repository.AppointmentRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	broker messaging.Broker,
	mailer email.Sender,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		appointments:  appointments,
		patients:      patients,
		doctors:       doctors,
		broker:        broker,
		mailer:        mailer,
		metrics:       metrics,
		logger:        logger,
	}
}

// Handle implements the outbox handler contract.
func (d *Dispatcher) Handle(ctx context.Context, payload json.RawMessage) error {
	var task model.NotificationTask
	if err := json.Unmarshal(payload, &task); err != nil {
		return fmt.Errorf("malformed notification task: %w", err)
	}
	return d.Dispatch(ctx, &task)
}

// Dispatch looks up the appointment and its participants and stores the
// derived notification. A missing appointment, patient, or doctor makes
// the task a silent no-op: the record may have been deleted between
// scheduling and execution, and by then there is nothing to notify about.
func (d *Dispatcher) Dispatch(ctx context.Context, task *model.NotificationTask) error {
	appointment, err := d.appointments.GetByID(ctx, task.AppointmentID)
	if err != nil {
		return d.discardIfGone(err, task)
	}

	patient, err := d.patients.GetByID(ctx, appointment.PatientID)
	if err != nil {
		return d.discardIfGone(err, task)
	}

	doctor, err := d.doctors.GetByID(ctx, appointment.DoctorID)
	if err != nil {
		return d.discardIfGone(err, task)
	}

	notification := render(task.Type, appointment, patient, doctor)
	if notification == nil {
		d.logger.Warn("unknown notification type", "type", string(task.Type))
		return nil
	}

	if err := d.notifications.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	d.metrics.NotificationsCreated.WithLabelValues(string(task.Type)).Inc()

	// Side channels are best effort; the stored record is the contract.
	if d.broker != nil {
		if err := d.broker.Publish(ctx, BroadcastChannel, notification); err != nil {
			d.logger.Warn("failed to broadcast notification", "error", err.Error())
		}
	}
	if task.Type == model.NotificationAppointmentReminder && d.mailer != nil && patient.Email != "" {
		if err := d.mailer.Send(patient.Email, notification.Title, notification.Message); err != nil {
			d.logger.Warn("failed to email reminder",
				"patient_id", patient.PublicID,
				"error", err.Error())
		}
	}

	return nil
}

func (d *Dispatcher) discardIfGone(err error, task *model.NotificationTask) error {
	var nfe *repository.NotFoundError
	if errors.As(err, &nfe) {
		d.metrics.NotificationsDiscarded.Inc()
		d.logger.Debug("discarding notification task for missing record",
			"appointment_id", task.AppointmentID.String(),
			"type", string(task.Type))
		return nil
	}
	return err
}

// render maps an event to recipient, title, and message. The doctor
// receives appointment requests; the patient receives everything else.
func render(event model.NotificationType, appointment *model.Appointment, patient *model.Patient, doctor *model.Doctor) *model.Notification {
	n := &model.Notification{
		Type:          event,
		IsRead:        false,
		AppointmentID: appointment.ID,
	}

	switch event {
	case model.NotificationAppointmentRequest:
		n.Title = "New Appointment Request"
		n.Message = fmt.Sprintf("%s has requested an appointment on %s at %s",
			patient.Name, appointment.Date, appointment.Time)
		n.RecipientID = doctor.UserID.String()
		n.RecipientType = model.RecipientDoctor
	case model.NotificationAppointmentConfirmed:
		n.Title = "Appointment Confirmed"
		n.Message = fmt.Sprintf("Your appointment with Dr. %s on %s at %s has been confirmed",
			doctor.Name, appointment.Date, appointment.Time)
		n.RecipientID = patient.PublicID
		n.RecipientType = model.RecipientPatient
	case model.NotificationAppointmentCancelled:
		n.Title = "Appointment Cancelled"
		n.Message = fmt.Sprintf("Your appointment with Dr. %s on %s at %s has been cancelled",
			doctor.Name, appointment.Date, appointment.Time)
		n.RecipientID = patient.PublicID
		n.RecipientType = model.RecipientPatient
	case model.NotificationAppointmentReminder:
		n.Title = "Appointment Reminder"
		n.Message = fmt.Sprintf("Reminder: You have an appointment with Dr. %s tomorrow at %s",
			doctor.Name, appointment.Time)
		n.RecipientID = patient.PublicID
		n.RecipientType = model.RecipientPatient
	default:
		return nil
	}

	return n
}
