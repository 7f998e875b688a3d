package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/scheduler-api/internal/config"
	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	apperrors "github.com/medisched/scheduler-api/pkg/errors"
)

type fakeAccountRepo struct {
	byEmail map[string]*model.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byEmail: make(map[string]*model.Account)}
}

func (f *fakeAccountRepo) Create(_ context.Context, a *model.Account) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	f.byEmail[a.Email] = a
	return nil
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	for _, a := range f.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, &repository.NotFoundError{Resource: "account"}
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	a, ok := f.byEmail[email]
	if !ok {
		return nil, &repository.NotFoundError{Resource: "account"}
	}
	return a, nil
}

func newTestService() (*Service, *fakeAccountRepo) {
	repo := newFakeAccountRepo()
	return NewService(repo, config.JWTConfig{Secret: "test-secret", ExpiryHours: 1}), repo
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, repo := newTestService()

	account, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "alice@example.com",
		Name:     "Alice Chen",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", account.PasswordHash)
	assert.NotEmpty(t, repo.byEmail["alice@example.com"].PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	req := &model.RegisterRequest{Email: "alice@example.com", Name: "Alice", Password: "hunter22"}

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalid))
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newTestService()

	account, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "hunter22",
	})
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.EqualValues(t, 3600, token.ExpiresIn)

	id, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, id.UserID)
	assert.Equal(t, "alice@example.com", id.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "hunter22",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotAuthenticated))
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter22",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotAuthenticated))
}

func TestValidateTokenGarbage(t *testing.T) {
	svc, _ := newTestService()

	id, err := svc.ValidateToken("not.a.token")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotAuthenticated))
	assert.True(t, id.IsAnonymous())
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "hunter22",
	})
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	other := NewService(repo, config.JWTConfig{Secret: "different", ExpiryHours: 1})
	_, err = other.ValidateToken(token.AccessToken)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotAuthenticated))
}
