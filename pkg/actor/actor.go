// Package actor carries the authenticated staff member performing a request.
//
// The auth middleware resolves the actor once per request. Handlers read it
// with FromContext and hand it to services explicitly, so services never
// reach into ambient request state.
package actor

import (
	"context"
	"fmt"

	"github.com/pulsmedic/pulsmedic-backend/pkg/permissions"
)

// Actor is a signed-in user together with the profile they act as.
type Actor struct {
	UserID    string           `json:"user_id"`
	ProfileID string           `json:"profile_id"`
	Email     string           `json:"email"`
	FullName  string           `json:"full_name"`
	Role      permissions.Role `json:"role"`
	IsActive  bool             `json:"is_active"`
	// TokenID is the jti of the access token that authenticated the request.
	TokenID string `json:"-"`
}

// HasRole reports whether the actor satisfies the required role.
func (a *Actor) HasRole(required permissions.Role) bool {
	if a == nil {
		return false
	}
	return permissions.HasRole(a.Role, a.IsActive, required)
}

// Can reports whether the actor's role grants the permission.
func (a *Actor) Can(permission string) bool {
	if a == nil || !a.IsActive {
		return false
	}
	return permissions.HasPermission(permissions.ForRole(a.Role), permission)
}

// String returns a string representation of the actor for logging
func (a *Actor) String() string {
	if a == nil {
		return "anonymous"
	}
	return fmt.Sprintf("%s <%s> (%s)", a.FullName, a.Email, a.Role)
}

type contextKey struct{}

// FromContext retrieves the Actor from the context, or nil for anonymous requests.
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	a, _ := ctx.Value(contextKey{}).(*Actor)
	return a
}

// WithActor returns a new context with the Actor attached.
func WithActor(ctx context.Context, a *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, a)
}
