package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medisched/scheduler-api/internal/service/auth"
	apperrors "github.com/medisched/scheduler-api/pkg/errors"
	"github.com/medisched/scheduler-api/pkg/httputil"
	"github.com/medisched/scheduler-api/pkg/identity"
)

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate requires a valid bearer token and stores the resolved
// caller identity in the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := m.resolve(c)
		if !ok {
			httputil.RespondWithError(c, apperrors.NotAuthenticated())
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), caller))
		c.Next()
	}
}

// Optional resolves an identity when a token is present but lets
// anonymous requests through. Patient-facing reads use it: they are keyed
// by public patient ID, not by account.
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if caller, ok := m.resolve(c); ok {
			c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), caller))
		}
		c.Next()
	}
}

func (m *AuthMiddleware) resolve(c *gin.Context) (identity.Identity, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return identity.Anonymous, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return identity.Anonymous, false
	}

	caller, err := m.authService.ValidateToken(parts[1])
	if err != nil {
		return identity.Anonymous, false
	}
	return caller, true
}
