package identity

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// Identity is the resolved caller identity. It is carried explicitly through
// request contexts instead of being looked up from ambient session state.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Anonymous is the sentinel for an unauthenticated caller.
var Anonymous = Identity{}

func (i Identity) IsAnonymous() bool {
	return i.UserID == uuid.Nil
}

// WithIdentity returns a context carrying the caller identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the caller identity, or Anonymous if none was set.
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(contextKey{}).(Identity); ok {
		return id
	}
	return Anonymous
}
