package doctor

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/internal/service/authz"
	apperrors "github.com/medisched/scheduler-api/pkg/errors"
	"github.com/medisched/scheduler-api/pkg/identity"
)

type fakeDoctorRepo struct {
	byID map[uuid.UUID]*model.Doctor
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{byID: make(map[uuid.UUID]*model.Doctor)}
}

func (f *fakeDoctorRepo) Create(_ context.Context, d *model.Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	f.byID[d.ID] = d
	return nil
}

func (f *fakeDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := f.byID[id]
	if !ok {
		return nil, &repository.NotFoundError{Resource: "doctor"}
	}
	return d, nil
}

func (f *fakeDoctorRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Doctor, error) {
	for _, d := range f.byID {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, &repository.NotFoundError{Resource: "doctor"}
}

func (f *fakeDoctorRepo) Update(_ context.Context, d *model.Doctor) error {
	f.byID[d.ID] = d
	return nil
}

func createRequest() *model.CreateDoctorRequest {
	return &model.CreateDoctorRequest{
		Name:           "Alice Chen",
		Specialization: "cardiology",
		WorkingHours:   model.WorkingHours{Start: "09:00", End: "17:00"},
		WorkingDays:    []string{"monday", "wednesday", "friday"},
	}
}

func TestCreateProfile(t *testing.T) {
	repo := newFakeDoctorRepo()
	svc := NewService(repo, authz.NewGuard(repo))
	caller := identity.Identity{UserID: uuid.New()}

	d, err := svc.CreateProfile(context.Background(), caller, createRequest())
	require.NoError(t, err)
	assert.Equal(t, caller.UserID, d.UserID)
	assert.Equal(t, "cardiology", d.Specialization)
	assert.Len(t, d.WorkingDays, 3)
}

func TestCreateProfileOncePerAccount(t *testing.T) {
	repo := newFakeDoctorRepo()
	svc := NewService(repo, authz.NewGuard(repo))
	caller := identity.Identity{UserID: uuid.New()}

	_, err := svc.CreateProfile(context.Background(), caller, createRequest())
	require.NoError(t, err)

	_, err = svc.CreateProfile(context.Background(), caller, createRequest())
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalid))
}

func TestCreateProfileRequiresAuthentication(t *testing.T) {
	repo := newFakeDoctorRepo()
	svc := NewService(repo, authz.NewGuard(repo))

	_, err := svc.CreateProfile(context.Background(), identity.Anonymous, createRequest())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotAuthenticated))
}

func TestGetProfile(t *testing.T) {
	repo := newFakeDoctorRepo()
	svc := NewService(repo, authz.NewGuard(repo))
	caller := identity.Identity{UserID: uuid.New()}

	created, err := svc.CreateProfile(context.Background(), caller, createRequest())
	require.NoError(t, err)

	got, err := svc.GetProfile(context.Background(), caller)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetProfile(context.Background(), identity.Identity{UserID: uuid.New()})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUpdateProfileOwnerOnly(t *testing.T) {
	repo := newFakeDoctorRepo()
	guard := authz.NewGuard(repo)
	svc := NewService(repo, guard)
	caller := identity.Identity{UserID: uuid.New()}

	created, err := svc.CreateProfile(context.Background(), caller, createRequest())
	require.NoError(t, err)

	update := &model.UpdateDoctorRequest{
		Name:           "Alice Chen",
		Specialization: "pediatrics",
		WorkingHours:   model.WorkingHours{Start: "08:00", End: "16:00"},
		WorkingDays:    []string{"tuesday"},
	}
	updated, err := svc.UpdateProfile(context.Background(), caller, created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "pediatrics", updated.Specialization)
	assert.Equal(t, "08:00", updated.WorkingHoursStart)

	// stale ownership must not be served from the guard cache
	fresh, err := guard.Doctor(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "pediatrics", fresh.Specialization)

	other := identity.Identity{UserID: uuid.New()}
	require.NoError(t, repo.Create(context.Background(), &model.Doctor{UserID: other.UserID}))

	_, err = svc.UpdateProfile(context.Background(), other, created.ID, update)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestGetByID(t *testing.T) {
	repo := newFakeDoctorRepo()
	svc := NewService(repo, authz.NewGuard(repo))

	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
