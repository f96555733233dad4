package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pulsmedic/pulsmedic-backend/internal/admin/domain"
	authmiddleware "github.com/pulsmedic/pulsmedic-backend/internal/auth/middleware"
	authservice "github.com/pulsmedic/pulsmedic-backend/internal/auth/service"
	profiledomain "github.com/pulsmedic/pulsmedic-backend/internal/profile/domain"
	"github.com/pulsmedic/pulsmedic-backend/pkg/actor"
	"github.com/pulsmedic/pulsmedic-backend/pkg/httputil"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/permissions"
)

// AdminService is the subset of the admin service the handler needs
type AdminService interface {
	ListProfiles(ctx context.Context) ([]profiledomain.Profile, error)
	CreateUser(ctx context.Context, a *actor.Actor, req *authservice.CreateAccountRequest) (*profiledomain.Profile, error)
	SetProfileStatus(ctx context.Context, a *actor.Actor, id string, active bool) (*profiledomain.Profile, error)
	ListCalendarPermissions(ctx context.Context) ([]domain.CalendarPermission, error)
	CreateCalendarPermission(ctx context.Context, a *actor.Actor, in *domain.CalendarPermissionInput) (*domain.CalendarPermission, error)
	DeleteCalendarPermission(ctx context.Context, a *actor.Actor, id string) error
}

// AdminHandler handles the admin panel endpoints. Mount it behind the
// admin role check.
type AdminHandler struct {
	service AdminService
	logger  *logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(svc AdminService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the admin endpoints
func (h *AdminHandler) Routes(r chi.Router) {
	r.With(authmiddleware.RequirePermission(permissions.AdminProfiles)).Group(func(r chi.Router) {
		r.Get("/profiles", h.ListProfiles)
		r.Patch("/profiles/{id}/status", h.SetProfileStatus)
	})
	r.With(authmiddleware.RequirePermission(permissions.AdminUsers)).Post("/users", h.CreateUser)

	r.With(authmiddleware.RequirePermission(permissions.AdminCalendarPerms)).Group(func(r chi.Router) {
		r.Get("/calendar-permissions", h.ListCalendarPermissions)
		r.Post("/calendar-permissions", h.CreateCalendarPermission)
		r.Delete("/calendar-permissions/{id}", h.DeleteCalendarPermission)
	})
}

// ListProfiles lists all staff profiles
func (h *AdminHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.ListProfiles(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.List(w, profiles)
}

// CreateUser creates a staff account
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req authservice.CreateAccountRequest
	if err := httputil.Bind(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	profile, err := h.service.CreateUser(r.Context(), actor.FromContext(r.Context()), &req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.Created(w, profile)
}

// SetProfileStatus activates or deactivates a profile
func (h *AdminHandler) SetProfileStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id", "profile")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	var in domain.ProfileStatusInput
	if err := httputil.Bind(r, &in); err != nil {
		httputil.Error(w, r, err)
		return
	}

	profile, err := h.service.SetProfileStatus(r.Context(), actor.FromContext(r.Context()), id, *in.IsActive)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, profile)
}

// ListCalendarPermissions lists calendar permissions
func (h *AdminHandler) ListCalendarPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListCalendarPermissions(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.List(w, perms)
}

// CreateCalendarPermission grants a calendar permission
func (h *AdminHandler) CreateCalendarPermission(w http.ResponseWriter, r *http.Request) {
	var in domain.CalendarPermissionInput
	if err := httputil.Bind(r, &in); err != nil {
		httputil.Error(w, r, err)
		return
	}

	perm, err := h.service.CreateCalendarPermission(r.Context(), actor.FromContext(r.Context()), &in)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.Created(w, perm)
}

// DeleteCalendarPermission revokes a calendar permission
func (h *AdminHandler) DeleteCalendarPermission(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id", "calendar_permission")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	if err := h.service.DeleteCalendarPermission(r.Context(), actor.FromContext(r.Context()), id); err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.NoContent(w)
}
