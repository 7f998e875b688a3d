package model

import (
	"github.com/google/uuid"
)

// Patient is a patient record owned by a doctor. PublicID is the
// human-readable identifier handed to the patient; it is the only handle a
// patient-side client ever holds.
type Patient struct {
	Base
	PublicID     string    `db:"public_id" json:"patient_id"`
	DoctorID     uuid.UUID `db:"doctor_id" json:"doctor_id"`
	CreatedBy    uuid.UUID `db:"created_by" json:"created_by"`
	Name         string    `db:"name" json:"name"`
	Phone        string    `db:"phone" json:"phone"`
	Email        string    `db:"email" json:"email,omitempty"`
	DateOfBirth  string    `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Address      string    `db:"address" json:"address,omitempty"`
	MedicalNotes string    `db:"medical_notes" json:"medical_notes,omitempty"`
}

type CreatePatientRequest struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Email        string `json:"email" binding:"omitempty,email"`
	DateOfBirth  string `json:"date_of_birth"`
	Address      string `json:"address"`
	MedicalNotes string `json:"medical_notes"`
}

type UpdatePatientRequest struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Email        string `json:"email" binding:"omitempty,email"`
	DateOfBirth  string `json:"date_of_birth"`
	Address      string `json:"address"`
	MedicalNotes string `json:"medical_notes"`
}
