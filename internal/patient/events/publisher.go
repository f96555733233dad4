package events

import (
	"context"

	"github.com/pulsmedic/pulsmedic-backend/internal/patient/domain"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/messaging"
)

// PatientEventPublisher publishes patient events. Failures are logged only.
type PatientEventPublisher struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewPatientEventPublisher creates a new patient event publisher
func NewPatientEventPublisher(publisher messaging.EventPublisher, log *logger.Logger) *PatientEventPublisher {
	return &PatientEventPublisher{
		publisher: publisher,
		logger:    log,
	}
}

// PublishPatientCreated publishes a patient created event
func (p *PatientEventPublisher) PublishPatientCreated(ctx context.Context, patient *domain.Patient, actorID string) {
	p.publish(ctx, messaging.EventPatientCreated, patient.ID, actorID)
}

// PublishPatientUpdated publishes a patient updated event
func (p *PatientEventPublisher) PublishPatientUpdated(ctx context.Context, patient *domain.Patient, actorID string) {
	p.publish(ctx, messaging.EventPatientUpdated, patient.ID, actorID)
}

// PublishPatientDeactivated publishes a patient deactivated event
func (p *PatientEventPublisher) PublishPatientDeactivated(ctx context.Context, patient *domain.Patient, actorID string) {
	p.publish(ctx, messaging.EventPatientDeactivated, patient.ID, actorID)
}

func (p *PatientEventPublisher) publish(ctx context.Context, eventType, patientID, actorID string) {
	data := messaging.EntityEvent{ID: patientID, ActorID: actorID}
	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("patient_id", patientID).Str("event_type", eventType).Msg("failed to publish patient event")
	}
}
