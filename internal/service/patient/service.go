package patient

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/internal/service/authz"
	apperrors "github.com/medisched/scheduler-api/pkg/errors"
	"github.com/medisched/scheduler-api/pkg/identity"
	"github.com/medisched/scheduler-api/pkg/logger"
)

type Service struct {
	repo         repository.PatientRepository
	appointments repository.AppointmentRepository
	guard        *authz.Guard
	logger       *logger.Logger
}

func NewService(repo repository.PatientRepository, appointments repository.AppointmentRepository, guard *authz.Guard, logger *logger.Logger) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		guard:        guard,
		logger:       logger,
	}
}

// GeneratePublicID builds a patient-facing identifier from the current
// timestamp and a random suffix, both base36, upper-cased. Uniqueness is
// best effort: there is no collision check against existing identifiers.
func GeneratePublicID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fall back to the clock; the suffix only reduces collision odds.
		binary.BigEndian.PutUint64(buf[:], uint64(time.Now().UnixNano()))
	}
	suffix := strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 36)
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}

	return strings.ToUpper("P" + ts + suffix)
}

// Create registers a patient under the caller's doctor record.
func (s *Service) Create(ctx context.Context, caller identity.Identity, req *model.CreatePatientRequest) (*model.Patient, error) {
	doctor, err := s.guard.DoctorRecord(ctx, caller)
	if err != nil {
		return nil, err
	}

	patient := &model.Patient{
		PublicID:     GeneratePublicID(),
		DoctorID:     doctor.ID,
		CreatedBy:    caller.UserID,
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		DateOfBirth:  req.DateOfBirth,
		Address:      req.Address,
		MedicalNotes: req.MedicalNotes,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, apperrors.Internal(err)
	}
	return patient, nil
}

// ListForDoctor returns the caller's own patients.
func (s *Service) ListForDoctor(ctx context.Context, caller identity.Identity) ([]*model.Patient, error) {
	doctor, err := s.guard.DoctorRecord(ctx, caller)
	if err != nil {
		return nil, err
	}

	patients, err := s.repo.ListByDoctor(ctx, doctor.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return patients, nil
}

// GetByPublicID resolves a patient by the identifier the patient holds.
func (s *Service) GetByPublicID(ctx context.Context, publicID string) (*model.Patient, error) {
	patient, err := s.repo.GetByPublicID(ctx, publicID)
	if err != nil {
		var nfe *repository.NotFoundError
		if errors.As(err, &nfe) {
			return nil, apperrors.NotFound("patient")
		}
		return nil, apperrors.Internal(err)
	}
	return patient, nil
}

// Update mutates a patient record. Only the creating account may call it.
func (s *Service) Update(ctx context.Context, caller identity.Identity, publicID string, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.requireCreator(ctx, caller, publicID)
	if err != nil {
		return nil, err
	}

	patient.Name = req.Name
	patient.Phone = req.Phone
	patient.Email = req.Email
	patient.DateOfBirth = req.DateOfBirth
	patient.Address = req.Address
	patient.MedicalNotes = req.MedicalNotes

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, apperrors.Internal(err)
	}
	return patient, nil
}

// Delete removes a patient and every appointment referencing it. The
// appointments go first so a crash in between leaves no orphans pointing
// at a missing patient.
func (s *Service) Delete(ctx context.Context, caller identity.Identity, publicID string) error {
	patient, err := s.requireCreator(ctx, caller, publicID)
	if err != nil {
		return err
	}

	deleted, err := s.appointments.DeleteByPatient(ctx, patient.ID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if deleted > 0 {
		s.logger.Info("cascade deleted appointments",
			"patient_id", patient.PublicID,
			"count", deleted)
	}

	if err := s.repo.Delete(ctx, patient.ID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) requireCreator(ctx context.Context, caller identity.Identity, publicID string) (*model.Patient, error) {
	if caller.IsAnonymous() {
		return nil, apperrors.NotAuthenticated()
	}

	patient, err := s.repo.GetByPublicID(ctx, publicID)
	if err != nil {
		var nfe *repository.NotFoundError
		if errors.As(err, &nfe) {
			return nil, apperrors.NotFound("patient")
		}
		return nil, apperrors.Internal(err)
	}

	if patient.CreatedBy != caller.UserID {
		return nil, apperrors.Unauthorized()
	}
	return patient, nil
}
