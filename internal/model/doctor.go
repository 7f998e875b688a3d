package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Doctor is a doctor profile. Exactly one profile exists per account; the
// profile owner is the only caller allowed to mutate it or anything it owns.
type Doctor struct {
	Base
	UserID            uuid.UUID      `db:"user_id" json:"user_id"`
	Name              string         `db:"name" json:"name"`
	Specialization    string         `db:"specialization" json:"specialization"`
	Phone             string         `db:"phone" json:"phone,omitempty"`
	ClinicAddress     string         `db:"clinic_address" json:"clinic_address,omitempty"`
	WorkingHoursStart string         `db:"working_hours_start" json:"working_hours_start"`
	WorkingHoursEnd   string         `db:"working_hours_end" json:"working_hours_end"`
	WorkingDays       pq.StringArray `db:"working_days" json:"working_days"`
}

type WorkingHours struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

type CreateDoctorRequest struct {
	Name           string       `json:"name" binding:"required"`
	Specialization string       `json:"specialization" binding:"required"`
	Phone          string       `json:"phone"`
	ClinicAddress  string       `json:"clinic_address"`
	WorkingHours   WorkingHours `json:"working_hours" binding:"required"`
	WorkingDays    []string     `json:"working_days" binding:"required,min=1"`
}

type UpdateDoctorRequest struct {
	Name           string       `json:"name" binding:"required"`
	Specialization string       `json:"specialization" binding:"required"`
	Phone          string       `json:"phone"`
	ClinicAddress  string       `json:"clinic_address"`
	WorkingHours   WorkingHours `json:"working_hours" binding:"required"`
	WorkingDays    []string     `json:"working_days" binding:"required,min=1"`
}
