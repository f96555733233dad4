package events

import (
	"context"

	"github.com/pulsmedic/pulsmedic-backend/internal/appointment/domain"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/messaging"
)

// AppointmentEventPublisher publishes appointment events. Failures are logged only.
type AppointmentEventPublisher struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewAppointmentEventPublisher creates a new appointment event publisher
func NewAppointmentEventPublisher(publisher messaging.EventPublisher, log *logger.Logger) *AppointmentEventPublisher {
	return &AppointmentEventPublisher{
		publisher: publisher,
		logger:    log,
	}
}

// PublishAppointmentCreated publishes an appointment created event
func (p *AppointmentEventPublisher) PublishAppointmentCreated(ctx context.Context, appointmentID, actorID string) {
	p.publish(ctx, messaging.EventAppointmentCreated, appointmentID, messaging.EntityEvent{ID: appointmentID, ActorID: actorID})
}

// PublishAppointmentUpdated publishes an appointment updated event
func (p *AppointmentEventPublisher) PublishAppointmentUpdated(ctx context.Context, appointmentID, actorID string) {
	p.publish(ctx, messaging.EventAppointmentUpdated, appointmentID, messaging.EntityEvent{ID: appointmentID, ActorID: actorID})
}

// PublishAppointmentDeleted publishes an appointment deleted event
func (p *AppointmentEventPublisher) PublishAppointmentDeleted(ctx context.Context, appointmentID, actorID string) {
	p.publish(ctx, messaging.EventAppointmentDeleted, appointmentID, messaging.EntityEvent{ID: appointmentID, ActorID: actorID})
}

// PublishStatusChanged publishes an appointment status change
func (p *AppointmentEventPublisher) PublishStatusChanged(ctx context.Context, appointmentID string, oldStatus, newStatus domain.Status, actorID string) {
	p.publish(ctx, messaging.EventAppointmentStatusChanged, appointmentID, messaging.AppointmentStatusChangedEvent{
		AppointmentID: appointmentID,
		OldStatus:     string(oldStatus),
		NewStatus:     string(newStatus),
		ActorID:       actorID,
	})
}

func (p *AppointmentEventPublisher) publish(ctx context.Context, eventType, appointmentID string, data interface{}) {
	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("appointment_id", appointmentID).Str("event_type", eventType).Msg("failed to publish appointment event")
	}
}
