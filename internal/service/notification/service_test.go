package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/scheduler-api/internal/model"
	apperrors "github.com/medisched/scheduler-api/pkg/errors"
	"github.com/medisched/scheduler-api/pkg/identity"
)

func seedNotification(t *testing.T, repo *fakeNotificationRepo, recipientID string, recipientType model.RecipientType) *model.Notification {
	t.Helper()
	n := &model.Notification{
		RecipientID:   recipientID,
		RecipientType: recipientType,
		Title:         "Appointment Confirmed",
		Type:          model.NotificationAppointmentConfirmed,
		AppointmentID: uuid.New(),
	}
	require.NoError(t, repo.Create(context.Background(), n))
	return n
}

func TestListForDoctorScopesByRecipient(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewService(repo)
	userID := uuid.New()

	mine := seedNotification(t, repo, userID.String(), model.RecipientDoctor)
	seedNotification(t, repo, uuid.New().String(), model.RecipientDoctor)
	seedNotification(t, repo, "PTEST01", model.RecipientPatient)

	list, err := svc.ListForDoctor(context.Background(), identity.Identity{UserID: userID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)
}

func TestListForDoctorRequiresAuthentication(t *testing.T) {
	svc := NewService(newFakeNotificationRepo())

	_, err := svc.ListForDoctor(context.Background(), identity.Anonymous)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotAuthenticated))
}

func TestListForPatientScopesByPublicID(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewService(repo)

	mine := seedNotification(t, repo, "PTEST01", model.RecipientPatient)
	seedNotification(t, repo, "POTHER", model.RecipientPatient)

	list, err := svc.ListForPatient(context.Background(), "PTEST01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)
}

func TestMarkReadDoctorNotification(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewService(repo)
	userID := uuid.New()

	n := seedNotification(t, repo, userID.String(), model.RecipientDoctor)

	require.NoError(t, svc.MarkRead(context.Background(), identity.Identity{UserID: userID}, n.ID, ""))
	assert.True(t, repo.byID[n.ID].IsRead)
}

func TestMarkReadDoctorNotificationWrongCaller(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewService(repo)

	n := seedNotification(t, repo, uuid.New().String(), model.RecipientDoctor)

	err := svc.MarkRead(context.Background(), identity.Identity{UserID: uuid.New()}, n.ID, "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))

	err = svc.MarkRead(context.Background(), identity.Anonymous, n.ID, "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotAuthenticated))
}

func TestMarkReadPatientNotification(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewService(repo)

	n := seedNotification(t, repo, "PTEST01", model.RecipientPatient)

	require.NoError(t, svc.MarkRead(context.Background(), identity.Anonymous, n.ID, "PTEST01"))
	assert.True(t, repo.byID[n.ID].IsRead)
}

func TestMarkReadPatientNotificationWrongID(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewService(repo)

	n := seedNotification(t, repo, "PTEST01", model.RecipientPatient)

	err := svc.MarkRead(context.Background(), identity.Anonymous, n.ID, "POTHER")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	assert.False(t, repo.byID[n.ID].IsRead)
}

func TestMarkReadMissingNotification(t *testing.T) {
	svc := NewService(newFakeNotificationRepo())

	err := svc.MarkRead(context.Background(), identity.Anonymous, uuid.New(), "PTEST01")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
