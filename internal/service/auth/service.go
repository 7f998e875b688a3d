package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medisched/scheduler-api/internal/config"
	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	apperrors "github.com/medisched/scheduler-api/pkg/errors"
	"github.com/medisched/scheduler-api/pkg/identity"
)

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Service struct {
	accounts repository.AccountRepository
	cfg      config.JWTConfig
}

func NewService(accounts repository.AccountRepository, cfg config.JWTConfig) *Service {
	return &Service{accounts: accounts, cfg: cfg}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.Account, error) {
	if _, err := s.accounts.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.Invalid("email already registered")
	} else {
		var nfe *repository.NotFoundError
		if !errors.As(err, &nfe) {
			return nil, apperrors.Internal(err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	account := &model.Account{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperrors.Internal(err)
	}
	return account, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	account, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		var nfe *repository.NotFoundError
		if errors.As(err, &nfe) {
			return nil, apperrors.NotAuthenticated()
		}
		return nil, apperrors.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.NotAuthenticated()
	}

	expiry := time.Duration(s.cfg.ExpiryHours) * time.Hour
	claims := Claims{
		Email: account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.TokenResponse{
		AccessToken: signed,
		ExpiresIn:   int64(expiry.Seconds()),
	}, nil
}

// ValidateToken parses a bearer token into a caller identity.
func (s *Service) ValidateToken(tokenString string) (identity.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return identity.Anonymous, apperrors.NotAuthenticated()
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return identity.Anonymous, apperrors.NotAuthenticated()
	}

	return identity.Identity{UserID: userID, Email: claims.Email}, nil
}
