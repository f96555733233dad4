package events

import (
	"context"

	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/messaging"
)

// AdminEventPublisher publishes admin panel events. Failures are logged only.
type AdminEventPublisher struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewAdminEventPublisher creates a new admin event publisher
func NewAdminEventPublisher(publisher messaging.EventPublisher, log *logger.Logger) *AdminEventPublisher {
	return &AdminEventPublisher{
		publisher: publisher,
		logger:    log,
	}
}

// PublishProfileStatusChanged publishes a profile (de)activation
func (p *AdminEventPublisher) PublishProfileStatusChanged(ctx context.Context, profileID string, active bool, actorID string) {
	data := messaging.ProfileStatusChangedEvent{ProfileID: profileID, IsActive: active, ActorID: actorID}
	if err := p.publisher.Publish(ctx, messaging.EventProfileStatusChanged, data); err != nil {
		p.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to publish profile status event")
	}
}

// PublishCalendarPermissionCreated publishes a granted calendar permission
func (p *AdminEventPublisher) PublishCalendarPermissionCreated(ctx context.Context, id, actorID string) {
	p.publish(ctx, messaging.EventCalendarPermissionCreated, id, actorID)
}

// PublishCalendarPermissionDeleted publishes a revoked calendar permission
func (p *AdminEventPublisher) PublishCalendarPermissionDeleted(ctx context.Context, id, actorID string) {
	p.publish(ctx, messaging.EventCalendarPermissionDeleted, id, actorID)
}

func (p *AdminEventPublisher) publish(ctx context.Context, eventType, id, actorID string) {
	data := messaging.EntityEvent{ID: id, ActorID: actorID}
	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("permission_id", id).Str("event_type", eventType).Msg("failed to publish calendar permission event")
	}
}
