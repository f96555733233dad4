package service

import (
	"context"

	"github.com/pulsmedic/pulsmedic-backend/internal/patient/domain"
	"github.com/pulsmedic/pulsmedic-backend/internal/patient/events"
	"github.com/pulsmedic/pulsmedic-backend/internal/patient/repository"
	"github.com/pulsmedic/pulsmedic-backend/pkg/actor"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
)

// ListParams filters the patient list
type ListParams struct {
	Query           string
	IncludeInactive bool
}

// PatientService handles patient business logic
type PatientService struct {
	repo      *repository.PatientRepository
	publisher *events.PatientEventPublisher
	logger    *logger.Logger
}

// NewPatientService creates a new patient service
func NewPatientService(repo *repository.PatientRepository, publisher *events.PatientEventPublisher, log *logger.Logger) *PatientService {
	return &PatientService{
		repo:      repo,
		publisher: publisher,
		logger:    log.WithComponent("patients"),
	}
}

// List returns the roster filtered by the search query
func (s *PatientService) List(ctx context.Context, params ListParams) ([]domain.Patient, error) {
	patients, err := s.repo.List(ctx, params.IncludeInactive)
	if err != nil {
		return nil, err
	}
	return domain.Search(patients, params.Query), nil
}

// Summary returns counts over the active roster
func (s *PatientService) Summary(ctx context.Context) (domain.Summary, error) {
	patients, err := s.repo.List(ctx, false)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(patients), nil
}

// Get returns a patient, including deactivated ones
func (s *PatientService) Get(ctx context.Context, id string) (*domain.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a new patient
func (s *PatientService) Create(ctx context.Context, a *actor.Actor, in *domain.Input) (*domain.Patient, error) {
	if a == nil {
		return nil, errors.Unauthorized("not authenticated")
	}
	in.Normalize()

	patient, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishPatientCreated(ctx, patient, a.ProfileID)
	s.logger.Info().Str("patient_id", patient.ID).Str("actor", a.ProfileID).Msg("patient created")

	return patient, nil
}

// Update replaces a patient's editable fields
func (s *PatientService) Update(ctx context.Context, a *actor.Actor, id string, in *domain.Input) (*domain.Patient, error) {
	if a == nil {
		return nil, errors.Unauthorized("not authenticated")
	}
	in.Normalize()

	patient, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishPatientUpdated(ctx, patient, a.ProfileID)
	return patient, nil
}

// Deactivate soft deletes a patient. The record stays retrievable by ID.
func (s *PatientService) Deactivate(ctx context.Context, a *actor.Actor, id string) (*domain.Patient, error) {
	if a == nil {
		return nil, errors.Unauthorized("not authenticated")
	}

	patient, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishPatientDeactivated(ctx, patient, a.ProfileID)
	s.logger.Info().Str("patient_id", patient.ID).Str("actor", a.ProfileID).Msg("patient deactivated")

	return patient, nil
}
