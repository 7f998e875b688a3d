package model

import (
	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// IsTerminal reports whether no transition may leave the status.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

type RequestedBy string

const (
	RequestedByDoctor  RequestedBy = "doctor"
	RequestedByPatient RequestedBy = "patient"
)

// Appointment references one patient and, denormalized, that patient's
// doctor. The doctor reference is fixed at creation time and not
// re-validated afterwards.
type Appointment struct {
	Base
	PatientID    uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	Date         string            `db:"appointment_date" json:"appointment_date"`
	Time         string            `db:"appointment_time" json:"appointment_time"`
	Type         string            `db:"appointment_type" json:"type"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Notes        string            `db:"notes" json:"notes,omitempty"`
	Diagnosis    string            `db:"diagnosis" json:"diagnosis,omitempty"`
	Prescription string            `db:"prescription" json:"prescription,omitempty"`
	RequestedBy  RequestedBy       `db:"requested_by" json:"requested_by"`
}

// AppointmentWithPatient is an appointment joined in memory with its patient.
type AppointmentWithPatient struct {
	Appointment
	Patient *Patient `json:"patient,omitempty"`
}

// AppointmentWithDoctor is an appointment joined in memory with its doctor.
type AppointmentWithDoctor struct {
	Appointment
	Doctor *Doctor `json:"doctor,omitempty"`
}

type CreateAppointmentRequest struct {
	PatientID   string `json:"patient_id" binding:"required"`
	Date        string `json:"appointment_date" binding:"required"`
	Time        string `json:"appointment_time" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Notes       string `json:"notes"`
	RequestedBy string `json:"requested_by" binding:"required,oneof=doctor patient"`
}

// UpdateAppointmentStatusRequest carries a target status plus optional
// clinical fields. The clinical fields are merged whatever status is
// reached; the workflow deliberately does not tie them to a state.
type UpdateAppointmentStatusRequest struct {
	Status       string  `json:"status" binding:"required,oneof=pending scheduled completed cancelled"`
	Notes        *string `json:"notes"`
	Diagnosis    *string `json:"diagnosis"`
	Prescription *string `json:"prescription"`
}
