package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/internal/service/authz"
	apperrors "github.com/medisched/scheduler-api/pkg/errors"
	"github.com/medisched/scheduler-api/pkg/identity"
	"github.com/medisched/scheduler-api/pkg/logger"
)

// Service implements the appointment lifecycle workflow. States move
// pending -> scheduled -> completed, with cancellation reachable from
// pending and scheduled; completed and cancelled are terminal.
type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	outbox   repository.OutboxRepository
	guard    *authz.Guard
	logger   *logger.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	patients repository.PatientRepository,
	outbox repository.OutboxRepository,
	guard *authz.Guard,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		outbox:   outbox,
		guard:    guard,
		logger:   logger,
	}
}

// Create books an appointment for a patient. The owning doctor is always
// resolved from the patient record; the client cannot supply one. A
// doctor-requested appointment starts scheduled and requires the caller to
// own the patient's doctor record; a patient-requested one starts pending.
func (s *Service) Create(ctx context.Context, caller identity.Identity, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if caller.IsAnonymous() {
		return nil, apperrors.NotAuthenticated()
	}

	patient, err := s.patients.GetByPublicID(ctx, req.PatientID)
	if err != nil {
		var nfe *repository.NotFoundError
		if errors.As(err, &nfe) {
			return nil, apperrors.NotFound("patient")
		}
		return nil, apperrors.Internal(err)
	}

	doctor, err := s.guard.Doctor(ctx, patient.DoctorID)
	if err != nil {
		return nil, err
	}

	requestedBy := model.RequestedBy(req.RequestedBy)
	if requestedBy == model.RequestedByDoctor && doctor.UserID != caller.UserID {
		return nil, apperrors.Unauthorized()
	}

	status := model.AppointmentStatusPending
	event := model.NotificationAppointmentRequest
	if requestedBy == model.RequestedByDoctor {
		status = model.AppointmentStatusScheduled
		event = model.NotificationAppointmentConfirmed
	}

	appointment := &model.Appointment{
		PatientID:   patient.ID,
		DoctorID:    patient.DoctorID,
		Date:        req.Date,
		Time:        req.Time,
		Type:        req.Type,
		Status:      status,
		Notes:       req.Notes,
		RequestedBy: requestedBy,
	}
	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.enqueueNotification(ctx, appointment.ID, event)
	return appointment, nil
}

// UpdateStatus applies one lifecycle transition. Optional clinical fields
// are merged whatever status is reached; the workflow does not restrict
// which fields may be set in which state.
func (s *Service) UpdateStatus(ctx context.Context, caller identity.Identity, id uuid.UUID, req *model.UpdateAppointmentStatusRequest) (*model.Appointment, error) {
	appointment, err := s.getOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	target := model.AppointmentStatus(req.Status)
	if err := validateTransition(appointment.Status, target); err != nil {
		return nil, err
	}

	changed := appointment.Status != target
	appointment.Status = target
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}
	if req.Diagnosis != nil {
		appointment.Diagnosis = *req.Diagnosis
	}
	if req.Prescription != nil {
		appointment.Prescription = *req.Prescription
	}

	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, apperrors.Internal(err)
	}

	// Only transitions into scheduled or cancelled notify; reaching
	// completed, and pending no-ops, stay silent.
	if changed {
		switch target {
		case model.AppointmentStatusScheduled:
			s.enqueueNotification(ctx, appointment.ID, model.NotificationAppointmentConfirmed)
		case model.AppointmentStatusCancelled:
			s.enqueueNotification(ctx, appointment.ID, model.NotificationAppointmentCancelled)
		}
	}

	return appointment, nil
}

// Delete removes an appointment in any state. Only the owning doctor may
// call it; there is no confirmation or soft delete at this layer.
func (s *Service) Delete(ctx context.Context, caller identity.Identity, id uuid.UUID) error {
	appointment, err := s.getOwned(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, appointment.ID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// ListForDoctor returns the caller's appointments with each patient
// resolved. Related records are fetched one by one and assembled in
// memory; the store does no joins.
func (s *Service) ListForDoctor(ctx context.Context, caller identity.Identity) ([]*model.AppointmentWithPatient, error) {
	doctor, err := s.guard.DoctorRecord(ctx, caller)
	if err != nil {
		return nil, err
	}

	appointments, err := s.repo.ListByDoctor(ctx, doctor.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	result := make([]*model.AppointmentWithPatient, 0, len(appointments))
	for _, apt := range appointments {
		entry := &model.AppointmentWithPatient{Appointment: *apt}
		if patient, err := s.patients.GetByID(ctx, apt.PatientID); err == nil {
			entry.Patient = patient
		}
		result = append(result, entry)
	}
	return result, nil
}

// ListForPatient returns a patient's appointment history keyed by public
// patient ID, with each appointment's doctor resolved.
func (s *Service) ListForPatient(ctx context.Context, publicID string) ([]*model.AppointmentWithDoctor, error) {
	patient, err := s.patients.GetByPublicID(ctx, publicID)
	if err != nil {
		var nfe *repository.NotFoundError
		if errors.As(err, &nfe) {
			return []*model.AppointmentWithDoctor{}, nil
		}
		return nil, apperrors.Internal(err)
	}

	appointments, err := s.repo.ListByPatient(ctx, patient.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	result := make([]*model.AppointmentWithDoctor, 0, len(appointments))
	for _, apt := range appointments {
		entry := &model.AppointmentWithDoctor{Appointment: *apt}
		if doctor, err := s.guard.Doctor(ctx, apt.DoctorID); err == nil {
			entry.Doctor = doctor
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *Service) getOwned(ctx context.Context, caller identity.Identity, id uuid.UUID) (*model.Appointment, error) {
	if caller.IsAnonymous() {
		return nil, apperrors.NotAuthenticated()
	}

	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		var nfe *repository.NotFoundError
		if errors.As(err, &nfe) {
			return nil, apperrors.NotFound("appointment")
		}
		return nil, apperrors.Internal(err)
	}

	if _, err := s.guard.RequireDoctorOwnership(ctx, caller, appointment.DoctorID); err != nil {
		return nil, err
	}
	return appointment, nil
}

func validateTransition(from, to model.AppointmentStatus) error {
	if from == to {
		if from == model.AppointmentStatusPending {
			return nil
		}
		return apperrors.Invalid(fmt.Sprintf("appointment is already %s", from))
	}
	if from.IsTerminal() {
		return apperrors.Invalid(fmt.Sprintf("cannot change a %s appointment", from))
	}

	switch from {
	case model.AppointmentStatusPending:
		if to == model.AppointmentStatusScheduled || to == model.AppointmentStatusCancelled {
			return nil
		}
	case model.AppointmentStatusScheduled:
		if to == model.AppointmentStatusCompleted || to == model.AppointmentStatusCancelled {
			return nil
		}
	}
	return apperrors.Invalid(fmt.Sprintf("invalid transition from %s to %s", from, to))
}

// enqueueNotification writes a dispatch task after the appointment write
// has committed. The two writes share no transaction; a failure here is
// logged and swallowed so it can never roll back or fail the mutation.
func (s *Service) enqueueNotification(ctx context.Context, appointmentID uuid.UUID, event model.NotificationType) {
	payload, err := json.Marshal(model.NotificationTask{
		AppointmentID: appointmentID,
		Type:          event,
	})
	if err != nil {
		s.logger.Error(err, "failed to marshal notification task")
		return
	}

	err = s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: model.EventTypeNotificationDispatch,
		Payload:   payload,
	})
	if err != nil {
		s.logger.Error(err, "failed to enqueue notification",
			"appointment_id", appointmentID.String(),
			"event", string(event))
	}
}
