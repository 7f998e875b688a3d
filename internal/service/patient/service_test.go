package patient

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/internal/service/authz"
	apperrors "github.com/medisched/scheduler-api/pkg/errors"
	"github.com/medisched/scheduler-api/pkg/identity"
	"github.com/medisched/scheduler-api/pkg/logger"
)

type fakePatientRepo struct {
	byPublicID map[string]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{byPublicID: make(map[string]*model.Patient)}
}

func (f *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.byPublicID[p.PublicID] = p
	return nil
}

func (f *fakePatientRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	for _, p := range f.byPublicID {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, &repository.NotFoundError{Resource: "patient"}
}

func (f *fakePatientRepo) GetByPublicID(_ context.Context, publicID string) (*model.Patient, error) {
	p, ok := f.byPublicID[publicID]
	if !ok {
		return nil, &repository.NotFoundError{Resource: "patient"}
	}
	return p, nil
}

func (f *fakePatientRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Patient, error) {
	var out []*model.Patient
	for _, p := range f.byPublicID {
		if p.DoctorID == doctorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	f.byPublicID[p.PublicID] = p
	return nil
}

func (f *fakePatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	for pid, p := range f.byPublicID {
		if p.ID == id {
			delete(f.byPublicID, pid)
			return nil
		}
	}
	return &repository.NotFoundError{Resource: "patient"}
}

type fakeDoctorRepo struct {
	byID map[uuid.UUID]*model.Doctor
}

func (f *fakeDoctorRepo) Create(_ context.Context, d *model.Doctor) error {
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

type fakeAppointmentRepo struct {
	byID map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{byID: make(map[uuid.UUID]*model.Appointment)}
}

func (f *fakeAppointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, &repository.NotFoundError{Resource: "appointment"}
	}
	return a, nil
}

func (f *fakeAppointmentRepo) Update(_ context.Context, a *model.Appointment) error {
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeAppointmentRepo) DeleteByPatient(_ context.Context, patientID uuid.UUID) (int64, error) {
	var n int64
	for id, a := range f.byID {
		if a.PatientID == patientID {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeAppointmentRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range f.byID {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range f.byID {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListScheduledOnDate(_ context.Context, _ string) ([]*model.Appointment, error) {
	return nil, nil
}

func newTestService(t *testing.T) (*Service, *fakePatientRepo, *fakeAppointmentRepo, *model.Doctor, identity.Identity) {
	t.Helper()

	patients := newFakePatientRepo()
	appointments := newFakeAppointmentRepo()
	doctors := &fakeDoctorRepo{byID: make(map[uuid.UUID]*model.Doctor)}

	doctor := &model.Doctor{
		Base:   model.Base{ID: uuid.New()},
		UserID: uuid.New(),
		Name:   "Alice Chen",
	}
	require.NoError(t, doctors.Create(context.Background(), doctor))

	svc := NewService(patients, appointments, authz.NewGuard(doctors), logger.NewLogger(nil))
	caller := identity.Identity{UserID: doctor.UserID, Email: "alice@example.com"}
	return svc, patients, appointments, doctor, caller
}

var publicIDPattern = regexp.MustCompile(`^P[0-9A-Z]+$`)

func TestGeneratePublicIDShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := GeneratePublicID()
		assert.Regexp(t, publicIDPattern, id)
		assert.Greater(t, len(id), 8)
	}
}

func TestGeneratePublicIDDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GeneratePublicID()
		assert.False(t, seen[id], "duplicate identifier %s", id)
		seen[id] = true
	}
}

func TestCreateBindsCallerDoctor(t *testing.T) {
	svc, _, _, doctor, caller := newTestService(t)

	p, err := svc.Create(context.Background(), caller, &model.CreatePatientRequest{
		Name:  "Bob Ortiz",
		Phone: "555-0100",
	})
	require.NoError(t, err)
	assert.Equal(t, doctor.ID, p.DoctorID)
	assert.Equal(t, caller.UserID, p.CreatedBy)
	assert.Regexp(t, publicIDPattern, p.PublicID)
}

func TestCreateRequiresDoctorProfile(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), identity.Identity{UserID: uuid.New()}, &model.CreatePatientRequest{
		Name:  "Bob Ortiz",
		Phone: "555-0100",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestCreateRequiresAuthentication(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), identity.Anonymous, &model.CreatePatientRequest{
		Name:  "Bob Ortiz",
		Phone: "555-0100",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotAuthenticated))
}

func TestUpdateCreatorOnly(t *testing.T) {
	svc, patients, _, doctor, caller := newTestService(t)
	ctx := context.Background()

	p := &model.Patient{
		Base:      model.Base{ID: uuid.New()},
		PublicID:  "PTEST01",
		DoctorID:  doctor.ID,
		CreatedBy: caller.UserID,
		Name:      "Bob Ortiz",
		Phone:     "555-0100",
	}
	require.NoError(t, patients.Create(ctx, p))

	updated, err := svc.Update(ctx, caller, p.PublicID, &model.UpdatePatientRequest{
		Name:  "Robert Ortiz",
		Phone: "555-0101",
	})
	require.NoError(t, err)
	assert.Equal(t, "Robert Ortiz", updated.Name)

	_, err = svc.Update(ctx, identity.Identity{UserID: uuid.New()}, p.PublicID, &model.UpdatePatientRequest{
		Name:  "Mallory",
		Phone: "555-0102",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestUpdateMissingPatient(t *testing.T) {
	svc, _, _, _, caller := newTestService(t)

	_, err := svc.Update(context.Background(), caller, "PMISSING", &model.UpdatePatientRequest{
		Name:  "Nobody",
		Phone: "555-0100",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestDeleteCascadesAppointments(t *testing.T) {
	svc, patients, appointments, doctor, caller := newTestService(t)
	ctx := context.Background()

	p := &model.Patient{
		Base:      model.Base{ID: uuid.New()},
		PublicID:  "PTEST01",
		DoctorID:  doctor.ID,
		CreatedBy: caller.UserID,
	}
	require.NoError(t, patients.Create(ctx, p))

	for i := 0; i < 3; i++ {
		require.NoError(t, appointments.Create(ctx, &model.Appointment{
			PatientID: p.ID,
			DoctorID:  doctor.ID,
			Status:    model.AppointmentStatusScheduled,
		}))
	}
	// another patient's appointment must survive
	other := uuid.New()
	require.NoError(t, appointments.Create(ctx, &model.Appointment{
		PatientID: other,
		DoctorID:  doctor.ID,
		Status:    model.AppointmentStatusScheduled,
	}))

	require.NoError(t, svc.Delete(ctx, caller, p.PublicID))

	_, err := patients.GetByPublicID(ctx, p.PublicID)
	assert.Error(t, err)

	left, err := appointments.ListByDoctor(ctx, doctor.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, other, left[0].PatientID)
}

func TestDeleteCreatorOnly(t *testing.T) {
	svc, patients, _, doctor, caller := newTestService(t)
	ctx := context.Background()

	p := &model.Patient{
		Base:      model.Base{ID: uuid.New()},
		PublicID:  "PTEST01",
		DoctorID:  doctor.ID,
		CreatedBy: caller.UserID,
	}
	require.NoError(t, patients.Create(ctx, p))

	err := svc.Delete(ctx, identity.Identity{UserID: uuid.New()}, p.PublicID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestListForDoctorScopesByOwner(t *testing.T) {
	svc, patients, _, doctor, caller := newTestService(t)
	ctx := context.Background()

	require.NoError(t, patients.Create(ctx, &model.Patient{
		Base: model.Base{ID: uuid.New()}, PublicID: "PA", DoctorID: doctor.ID, CreatedBy: caller.UserID,
	}))
	require.NoError(t, patients.Create(ctx, &model.Patient{
		Base: model.Base{ID: uuid.New()}, PublicID: "PB", DoctorID: uuid.New(), CreatedBy: uuid.New(),
	}))

	list, err := svc.ListForDoctor(ctx, caller)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "PA", list[0].PublicID)
}

func TestGetByPublicID(t *testing.T) {
	svc, patients, _, doctor, caller := newTestService(t)
	ctx := context.Background()

	require.NoError(t, patients.Create(ctx, &model.Patient{
		Base: model.Base{ID: uuid.New()}, PublicID: "PTEST01", DoctorID: doctor.ID, CreatedBy: caller.UserID, Name: "Bob Ortiz",
	}))

	p, err := svc.GetByPublicID(ctx, "PTEST01")
	require.NoError(t, err)
	assert.Equal(t, "Bob Ortiz", p.Name)

	_, err = svc.GetByPublicID(ctx, "PMISSING")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
