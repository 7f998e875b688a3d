package doctor

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/internal/service/authz"
	apperrors "github.com/medisched/scheduler-api/pkg/errors"
	"github.com/medisched/scheduler-api/pkg/identity"
)

type Service struct {
	repo  repository.DoctorRepository
	guard *authz.Guard
}

func NewService(repo repository.DoctorRepository, guard *authz.Guard) *Service {
	return &Service{repo: repo, guard: guard}
}

// CreateProfile creates the caller's doctor profile. At most one profile
// exists per account.
func (s *Service) CreateProfile(ctx context.Context, caller identity.Identity, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	if caller.IsAnonymous() {
		return nil, apperrors.NotAuthenticated()
	}

	if _, err := s.repo.GetByUserID(ctx, caller.UserID); err == nil {
		return nil, apperrors.Invalid("doctor profile already exists")
	} else {
		var nfe *repository.NotFoundError
		if !errors.As(err, &nfe) {
			return nil, apperrors.Internal(err)
		}
	}

	doctor := &model.Doctor{
		UserID:            caller.UserID,
		Name:              req.Name,
		Specialization:    req.Specialization,
		Phone:             req.Phone,
		ClinicAddress:     req.ClinicAddress,
		WorkingHoursStart: req.WorkingHours.Start,
		WorkingHoursEnd:   req.WorkingHours.End,
		WorkingDays:       pq.StringArray(req.WorkingDays),
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, apperrors.Internal(err)
	}
	return doctor, nil
}

// GetProfile returns the caller's own doctor profile.
func (s *Service) GetProfile(ctx context.Context, caller identity.Identity) (*model.Doctor, error) {
	if caller.IsAnonymous() {
		return nil, apperrors.NotAuthenticated()
	}

	doctor, err := s.repo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		var nfe *repository.NotFoundError
		if errors.As(err, &nfe) {
			return nil, apperrors.NotFound("doctor profile")
		}
		return nil, apperrors.Internal(err)
	}
	return doctor, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		var nfe *repository.NotFoundError
		if errors.As(err, &nfe) {
			return nil, apperrors.NotFound("doctor")
		}
		return nil, apperrors.Internal(err)
	}
	return doctor, nil
}

// UpdateProfile updates a doctor profile. Only the owning account may call it.
func (s *Service) UpdateProfile(ctx context.Context, caller identity.Identity, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.guard.RequireDoctorOwnership(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	doctor.Name = req.Name
	doctor.Specialization = req.Specialization
	doctor.Phone = req.Phone
	doctor.ClinicAddress = req.ClinicAddress
	doctor.WorkingHoursStart = req.WorkingHours.Start
	doctor.WorkingHoursEnd = req.WorkingHours.End
	doctor.WorkingDays = pq.StringArray(req.WorkingDays)

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.guard.Invalidate(doctor)
	return doctor, nil
}
