package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pulsmedic/pulsmedic-backend/internal/appointment/domain"
	"github.com/pulsmedic/pulsmedic-backend/internal/appointment/events"
	"github.com/pulsmedic/pulsmedic-backend/internal/appointment/repository"
	profiledomain "github.com/pulsmedic/pulsmedic-backend/internal/profile/domain"
	profilerepo "github.com/pulsmedic/pulsmedic-backend/internal/profile/repository"
	"github.com/pulsmedic/pulsmedic-backend/pkg/actor"
	"github.com/pulsmedic/pulsmedic-backend/pkg/config"
	"github.com/pulsmedic/pulsmedic-backend/pkg/database"
	"github.com/pulsmedic/pulsmedic-backend/pkg/dates"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
)

// AppointmentService handles appointment business logic
type AppointmentService struct {
	db        *database.DB
	repo      *repository.AppointmentRepository
	profiles  *profilerepo.ProfileRepository
	publisher *events.AppointmentEventPublisher
	policy    config.PolicyConfig
	logger    *logger.Logger
	now       func() time.Time
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	db *database.DB,
	publisher *events.AppointmentEventPublisher,
	policy config.PolicyConfig,
	log *logger.Logger,
) *AppointmentService {
	return &AppointmentService{
		db:        db,
		repo:      repository.NewAppointmentRepository(db),
		profiles:  profilerepo.NewProfileRepository(db),
		publisher: publisher,
		policy:    policy,
		logger:    log.WithComponent("appointments"),
		now:       time.Now,
	}
}

// List returns appointments matching the filter, ordered by date and time
func (s *AppointmentService) List(ctx context.Context, filter domain.Filter) ([]domain.Appointment, error) {
	return s.repo.List(ctx, filter)
}

// Agenda returns the appointments of a day and the open ones after it.
// A nil day means today.
func (s *AppointmentService) Agenda(ctx context.Context, day *dates.Date) (domain.Agenda, error) {
	selected := dates.Of(s.now())
	if day != nil {
		selected = *day
	}

	appointments, err := s.repo.List(ctx, domain.Filter{})
	if err != nil {
		return domain.Agenda{}, err
	}
	return domain.BuildAgenda(appointments, selected), nil
}

// Doctors lists the active doctors appointments can be booked with
func (s *AppointmentService) Doctors(ctx context.Context) ([]profiledomain.Profile, error) {
	return s.profiles.ListDoctors(ctx)
}

// Get returns one appointment
func (s *AppointmentService) Get(ctx context.Context, id string) (*domain.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// Create books an appointment on behalf of the actor
func (s *AppointmentService) Create(ctx context.Context, a *actor.Actor, in *domain.Input) (*domain.Appointment, error) {
	if a == nil {
		return nil, errors.Unauthorized("not authenticated")
	}
	if _, err := s.profiles.GetDoctor(ctx, in.DoctorID); err != nil {
		return nil, err
	}
	in.Status = ""
	in.ApplyDefaults()

	id, err := s.repo.Create(ctx, in, a.ProfileID)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishAppointmentCreated(ctx, id, a.ProfileID)
	s.logger.Info().Str("appointment_id", id).Str("actor", a.ProfileID).Msg("appointment created")

	return s.repo.GetByID(ctx, id)
}

// Update replaces an appointment's editable fields. An omitted status keeps the current one.
// The row stays locked from the status read to the write.
func (s *AppointmentService) Update(ctx context.Context, a *actor.Actor, id string, in *domain.Input) (*domain.Appointment, error) {
	if a == nil {
		return nil, errors.Unauthorized("not authenticated")
	}
	if in.Status != "" && !in.Status.Valid() {
		return nil, errors.Validation(map[string]string{"status": "unknown status"})
	}
	if _, err := s.profiles.GetDoctor(ctx, in.DoctorID); err != nil {
		return nil, err
	}

	var previous domain.Status
	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		previous, err = s.repo.LockStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		if in.Status == "" {
			in.Status = previous
		}
		if err := s.checkTransition(previous, in.Status); err != nil {
			return err
		}
		in.ApplyDefaults()
		return s.repo.Update(ctx, tx, id, in)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishAppointmentUpdated(ctx, id, a.ProfileID)
	if previous != in.Status {
		s.publisher.PublishStatusChanged(ctx, id, previous, in.Status, a.ProfileID)
	}

	return s.repo.GetByID(ctx, id)
}

// SetStatus moves an appointment to a new status. Any status is accepted
// unless strict transitions are enforced.
func (s *AppointmentService) SetStatus(ctx context.Context, a *actor.Actor, id string, status domain.Status) (*domain.Appointment, error) {
	if a == nil {
		return nil, errors.Unauthorized("not authenticated")
	}
	if !status.Valid() {
		return nil, errors.Validation(map[string]string{"status": "unknown status"})
	}

	var previous domain.Status
	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		previous, err = s.repo.LockStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.checkTransition(previous, status); err != nil {
			return err
		}
		return s.repo.UpdateStatus(ctx, tx, id, status)
	})
	if err != nil {
		return nil, err
	}

	if previous != status {
		s.publisher.PublishStatusChanged(ctx, id, previous, status, a.ProfileID)
		s.logger.Info().
			Str("appointment_id", id).
			Str("from", string(previous)).
			Str("to", string(status)).
			Msg("appointment status changed")
	}

	return s.repo.GetByID(ctx, id)
}

// Delete removes an appointment permanently
func (s *AppointmentService) Delete(ctx context.Context, a *actor.Actor, id string) error {
	if a == nil {
		return errors.Unauthorized("not authenticated")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publisher.PublishAppointmentDeleted(ctx, id, a.ProfileID)
	return nil
}

func (s *AppointmentService) checkTransition(from, to domain.Status) error {
	if !s.policy.EnforceStatusTransitions {
		return nil
	}
	return domain.ValidateTransition(from, to)
}
