// Package middleware authenticates API requests and enforces roles.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pulsmedic/pulsmedic-backend/pkg/actor"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
	"github.com/pulsmedic/pulsmedic-backend/pkg/httputil"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/permissions"
)

// Authenticator resolves the actor behind an access token
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*actor.Actor, error)
}

// Authenticate requires a valid bearer token and attaches the actor to the
// request context. Missing or invalid tokens get 401, inactive profiles 403.
func Authenticate(auth Authenticator, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				httputil.Error(w, r, err)
				return
			}

			a, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("authentication failed")
				httputil.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(actor.WithActor(r.Context(), a)))
		})
	}
}

// RequireRole rejects actors that do not satisfy role. Admins satisfy every role.
func RequireRole(role permissions.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a := actor.FromContext(r.Context())
			if a == nil {
				httputil.Error(w, r, errors.Unauthorized("not authenticated"))
				return
			}
			if !a.HasRole(role) {
				err := errors.Forbidden("requires role " + string(role))
				if role == permissions.RoleAdmin {
					err.MessageKey = "errors.admin_required"
				}
				httputil.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission rejects actors whose role does not grant permission
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a := actor.FromContext(r.Context())
			if a == nil {
				httputil.Error(w, r, errors.Unauthorized("not authenticated"))
				return
			}
			if !a.Can(permission) {
				httputil.Error(w, r, errors.Forbidden("missing permission "+permission))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.Unauthorized("missing authorization header")
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.Unauthorized("invalid authorization header format")
	}
	return strings.TrimSpace(token), nil
}
