package events

import (
	"context"

	"github.com/pulsmedic/pulsmedic-backend/internal/inventory/domain"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/messaging"
)

// InventoryEventPublisher publishes inventory-related events
type InventoryEventPublisher struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewInventoryEventPublisher creates a new inventory event publisher
func NewInventoryEventPublisher(publisher messaging.EventPublisher, log *logger.Logger) *InventoryEventPublisher {
	return &InventoryEventPublisher{
		publisher: publisher,
		logger:    log,
	}
}

// PublishTransactionRecorded publishes a stock transaction event
func (p *InventoryEventPublisher) PublishTransactionRecorded(ctx context.Context, t *domain.Transaction) {
	data := messaging.StockTransactionEvent{
		TransactionID:   t.ID,
		ItemID:          t.ItemID,
		TransactionType: string(t.TransactionType),
		Quantity:        t.Quantity,
		PreviousStock:   t.PreviousStock,
		NewStock:        t.NewStock,
		PerformedBy:     t.PerformedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventInventoryTransactionRecorded, data); err != nil {
		p.logger.Error().Err(err).Str("item_id", t.ItemID).Msg("failed to publish stock transaction event")
	}
}

// PublishLowStock publishes a low stock event for an item
func (p *InventoryEventPublisher) PublishLowStock(ctx context.Context, item *domain.Item) {
	data := messaging.LowStockEvent{
		ItemID:        item.ID,
		ItemName:      item.Name,
		CurrentStock:  item.CurrentStock,
		MinStockLevel: item.MinStockLevel,
	}

	if err := p.publisher.Publish(ctx, messaging.EventInventoryLowStock, data); err != nil {
		p.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to publish low stock event")
	}
}
