package authz

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	apperrors "github.com/medisched/scheduler-api/pkg/errors"
	"github.com/medisched/scheduler-api/pkg/identity"
)

const (
	cacheTTL     = 30 * time.Second
	cacheCleanup = time.Minute
)

// Guard is the single ownership check applied by every mutating operation:
// does the caller's account own the doctor record that owns the target
// entity. Authorization fails closed: an anonymous caller or an account
// without a doctor profile is always rejected, never treated as a guest.
type Guard struct {
	doctors repository.DoctorRepository
	cache   *gocache.Cache
}

func NewGuard(doctors repository.DoctorRepository) *Guard {
	return &Guard{
		doctors: doctors,
		cache:   gocache.New(cacheTTL, cacheCleanup),
	}
}

// DoctorRecord resolves the caller's own doctor profile.
func (g *Guard) DoctorRecord(ctx context.Context, caller identity.Identity) (*model.Doctor, error) {
	if caller.IsAnonymous() {
		return nil, apperrors.NotAuthenticated()
	}

	if cached, ok := g.cache.Get(userKey(caller.UserID)); ok {
		return cached.(*model.Doctor), nil
	}

	doctor, err := g.doctors.GetByUserID(ctx, caller.UserID)
	if err != nil {
		var nfe *repository.NotFoundError
		if errors.As(err, &nfe) {
			return nil, apperrors.Unauthorized()
		}
		return nil, apperrors.Internal(err)
	}

	g.cache.SetDefault(userKey(caller.UserID), doctor)
	return doctor, nil
}

// Doctor resolves a doctor record by ID, through the same cache.
func (g *Guard) Doctor(ctx context.Context, doctorID uuid.UUID) (*model.Doctor, error) {
	if cached, ok := g.cache.Get(doctorKey(doctorID)); ok {
		return cached.(*model.Doctor), nil
	}

	doctor, err := g.doctors.GetByID(ctx, doctorID)
	if err != nil {
		var nfe *repository.NotFoundError
		if errors.As(err, &nfe) {
			return nil, apperrors.NotFound("doctor")
		}
		return nil, apperrors.Internal(err)
	}

	g.cache.SetDefault(doctorKey(doctorID), doctor)
	return doctor, nil
}

// RequireDoctorOwnership checks that the caller owns the doctor record
// identified by doctorID and returns it.
func (g *Guard) RequireDoctorOwnership(ctx context.Context, caller identity.Identity, doctorID uuid.UUID) (*model.Doctor, error) {
	if caller.IsAnonymous() {
		return nil, apperrors.NotAuthenticated()
	}

	doctor, err := g.Doctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor.UserID != caller.UserID {
		return nil, apperrors.Unauthorized()
	}
	return doctor, nil
}

// Invalidate drops cached entries for a doctor after a profile mutation.
func (g *Guard) Invalidate(doctor *model.Doctor) {
	g.cache.Delete(userKey(doctor.UserID))
	g.cache.Delete(doctorKey(doctor.ID))
}

func userKey(userID uuid.UUID) string {
	return "user:" + userID.String()
}

func doctorKey(doctorID uuid.UUID) string {
	return "doctor:" + doctorID.String()
}
