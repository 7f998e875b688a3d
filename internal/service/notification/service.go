package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	apperrors "github.com/medisched/scheduler-api/pkg/errors"
	"github.com/medisched/scheduler-api/pkg/identity"
)

// listLimit caps notification listings to the most recent entries.
const listLimit = 50

// Service is the read side of notifications: listing per recipient and
// flipping the read flag.
type Service struct {
	repo repository.NotificationRepository
}

func NewService(repo repository.NotificationRepository) *Service {
	return &Service{repo: repo}
}

// ListForDoctor returns the caller's newest notifications, most recent first.
func (s *Service) ListForDoctor(ctx context.Context, caller identity.Identity) ([]*model.Notification, error) {
	if caller.IsAnonymous() {
		return nil, apperrors.NotAuthenticated()
	}

	notifications, err := s.repo.ListByRecipient(ctx, caller.UserID.String(), model.RecipientDoctor, listLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return notifications, nil
}

// ListForPatient returns a patient's newest notifications, keyed by the
// public patient ID the client already holds.
func (s *Service) ListForPatient(ctx context.Context, publicID string) ([]*model.Notification, error) {
	notifications, err := s.repo.ListByRecipient(ctx, publicID, model.RecipientPatient, listLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return notifications, nil
}

// MarkRead flips the read flag. Doctor notifications require the caller
// identity to match the recipient. Patient notifications carry no account,
// so possession of the matching public patient ID stands in for identity.
func (s *Service) MarkRead(ctx context.Context, caller identity.Identity, id uuid.UUID, patientPublicID string) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		var nfe *repository.NotFoundError
		if errors.As(err, &nfe) {
			return apperrors.NotFound("notification")
		}
		return apperrors.Internal(err)
	}

	switch notification.RecipientType {
	case model.RecipientDoctor:
		if caller.IsAnonymous() {
			return apperrors.NotAuthenticated()
		}
		if notification.RecipientID != caller.UserID.String() {
			return apperrors.Unauthorized()
		}
	case model.RecipientPatient:
		if notification.RecipientID != patientPublicID {
			return apperrors.Unauthorized()
		}
	}

	if err := s.repo.MarkRead(ctx, notification.ID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
