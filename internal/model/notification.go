package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType tags the appointment lifecycle event a notification
// was derived from.
type NotificationType string

const (
	NotificationAppointmentRequest   NotificationType = "appointment_request"
	NotificationAppointmentConfirmed NotificationType = "appointment_confirmed"
	NotificationAppointmentCancelled NotificationType = "appointment_cancelled"
	NotificationAppointmentReminder  NotificationType = "appointment_reminder"
)

type RecipientType string

const (
	RecipientDoctor  RecipientType = "doctor"
	RecipientPatient RecipientType = "patient"
)

// Notification is created only by the dispatch worker in response to a
// lifecycle event, never directly by a client. RecipientID is the doctor's
// account ID for doctor recipients and the public patient ID for patients.
type Notification struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	RecipientID   string           `db:"recipient_id" json:"recipient_id"`
	RecipientType RecipientType    `db:"recipient_type" json:"recipient_type"`
	Title         string           `db:"title" json:"title"`
	Message       string           `db:"message" json:"message"`
	Type          NotificationType `db:"type" json:"type"`
	IsRead        bool             `db:"is_read" json:"is_read"`
	AppointmentID uuid.UUID        `db:"appointment_id" json:"appointment_id"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
}

// NotificationTask is the payload of a queued dispatch request.
type NotificationTask struct {
	AppointmentID uuid.UUID        `json:"appointment_id"`
	Type          NotificationType `json:"type"`
}
