package service

import (
	"context"

	"github.com/pulsmedic/pulsmedic-backend/internal/admin/domain"
	"github.com/pulsmedic/pulsmedic-backend/internal/admin/events"
	"github.com/pulsmedic/pulsmedic-backend/internal/admin/repository"
	authservice "github.com/pulsmedic/pulsmedic-backend/internal/auth/service"
	profiledomain "github.com/pulsmedic/pulsmedic-backend/internal/profile/domain"
	profilerepo "github.com/pulsmedic/pulsmedic-backend/internal/profile/repository"
	"github.com/pulsmedic/pulsmedic-backend/pkg/actor"
	"github.com/pulsmedic/pulsmedic-backend/pkg/database"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/permissions"
)

// AccountCreator creates a user together with its profile
type AccountCreator interface {
	CreateAccount(ctx context.Context, req *authservice.CreateAccountRequest, createdBy string) (*profiledomain.Profile, error)
}

// AdminService handles staff administration and calendar permissions
type AdminService struct {
	profiles    *profilerepo.ProfileRepository
	permissions *repository.CalendarPermissionRepository
	accounts    AccountCreator
	publisher   *events.AdminEventPublisher
	logger      *logger.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(db *database.DB, accounts AccountCreator, publisher *events.AdminEventPublisher, log *logger.Logger) *AdminService {
	return &AdminService{
		profiles:    profilerepo.NewProfileRepository(db),
		permissions: repository.NewCalendarPermissionRepository(db),
		accounts:    accounts,
		publisher:   publisher,
		logger:      log.WithComponent("admin"),
	}
}

// ListProfiles returns every staff profile, newest first
func (s *AdminService) ListProfiles(ctx context.Context) ([]profiledomain.Profile, error) {
	return s.profiles.ListAll(ctx)
}

// CreateUser creates a staff account on behalf of an admin
func (s *AdminService) CreateUser(ctx context.Context, a *actor.Actor, req *authservice.CreateAccountRequest) (*profiledomain.Profile, error) {
	if err := authorize(a, permissions.AdminUsers); err != nil {
		return nil, err
	}
	return s.accounts.CreateAccount(ctx, req, a.ProfileID)
}

// SetProfileStatus activates or deactivates a profile. Admins cannot
// deactivate their own profile.
func (s *AdminService) SetProfileStatus(ctx context.Context, a *actor.Actor, id string, active bool) (*profiledomain.Profile, error) {
	if err := authorize(a, permissions.AdminProfiles); err != nil {
		return nil, err
	}
	if id == a.ProfileID && !active {
		return nil, errors.BadRequest("cannot deactivate your own profile")
	}

	current, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsActive == active {
		return current, nil
	}

	profile, err := s.profiles.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("profile_id", id).
		Bool("is_active", active).
		Str("actor", a.ProfileID).
		Msg("profile status changed")
	s.publisher.PublishProfileStatusChanged(ctx, id, active, a.ProfileID)

	return profile, nil
}

// ListCalendarPermissions returns every calendar permission with names
func (s *AdminService) ListCalendarPermissions(ctx context.Context) ([]domain.CalendarPermission, error) {
	return s.permissions.List(ctx)
}

// CreateCalendarPermission grants a staff member access to a doctor's calendar
func (s *AdminService) CreateCalendarPermission(ctx context.Context, a *actor.Actor, in *domain.CalendarPermissionInput) (*domain.CalendarPermission, error) {
	if err := authorize(a, permissions.AdminCalendarPerms); err != nil {
		return nil, err
	}
	if in.UserID == in.DoctorID {
		return nil, errors.Validation(map[string]string{"user_id": "must differ from doctor_id"})
	}

	if _, err := s.profiles.GetDoctor(ctx, in.DoctorID); err != nil {
		return nil, err
	}

	id, err := s.permissions.Create(ctx, in, a.ProfileID)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishCalendarPermissionCreated(ctx, id, a.ProfileID)
	return s.permissions.GetByID(ctx, id)
}

// DeleteCalendarPermission revokes a calendar permission
func (s *AdminService) DeleteCalendarPermission(ctx context.Context, a *actor.Actor, id string) error {
	if err := authorize(a, permissions.AdminCalendarPerms); err != nil {
		return err
	}
	if err := s.permissions.Delete(ctx, id); err != nil {
		return err
	}

	s.publisher.PublishCalendarPermissionDeleted(ctx, id, a.ProfileID)
	return nil
}

func authorize(a *actor.Actor, permission string) error {
	if a == nil {
		return errors.Unauthorized("not authenticated")
	}
	if !a.Can(permission) {
		err := errors.Forbidden("missing permission " + permission)
		err.MessageKey = "errors.admin_required"
		return err
	}
	return nil
}
