package service

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pulsmedic/pulsmedic-backend/internal/inventory/domain"
	"github.com/pulsmedic/pulsmedic-backend/internal/inventory/events"
	"github.com/pulsmedic/pulsmedic-backend/internal/inventory/export"
	"github.com/pulsmedic/pulsmedic-backend/internal/inventory/repository"
	"github.com/pulsmedic/pulsmedic-backend/pkg/actor"
	"github.com/pulsmedic/pulsmedic-backend/pkg/config"
	"github.com/pulsmedic/pulsmedic-backend/pkg/database"
	"github.com/pulsmedic/pulsmedic-backend/pkg/dates"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
	"github.com/pulsmedic/pulsmedic-backend/pkg/i18n"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/permissions"
)

// InventoryService handles inventory business logic
type InventoryService struct {
	db           *database.DB
	categoryRepo *repository.CategoryRepository
	itemRepo     *repository.ItemRepository
	txRepo       *repository.TransactionRepository
	publisher    *events.InventoryEventPublisher
	policy       config.PolicyConfig
	logger       *logger.Logger
	now          func() time.Time
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	db *database.DB,
	publisher *events.InventoryEventPublisher,
	policy config.PolicyConfig,
	log *logger.Logger,
) *InventoryService {
	return &InventoryService{
		db:           db,
		categoryRepo: repository.NewCategoryRepository(db),
		itemRepo:     repository.NewItemRepository(db),
		txRepo:       repository.NewTransactionRepository(db),
		publisher:    publisher,
		policy:       policy,
		logger:       log.WithComponent("inventory"),
		now:          time.Now,
	}
}

// TransactionResult is a recorded transaction together with the item after it
type TransactionResult struct {
	Transaction *domain.Transaction `json:"transaction"`
	Item        *domain.Item        `json:"item"`
}

// Category operations

// ListCategories returns every category ordered by name
func (s *InventoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// CreateCategory creates a category
func (s *InventoryService) CreateCategory(ctx context.Context, a *actor.Actor, in *domain.CategoryInput) (*domain.Category, error) {
	if err := authorize(a, permissions.InventoryCategories); err != nil {
		return nil, err
	}
	return s.categoryRepo.Create(ctx, in)
}

// Item operations

// ListItems returns items filtered by the search query
func (s *InventoryService) ListItems(ctx context.Context, query string) ([]domain.Item, error) {
	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Search(items, query), nil
}

// LowStock returns items at or below their minimum level
func (s *InventoryService) LowStock(ctx context.Context) ([]domain.Item, error) {
	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.LowStock(items), nil
}

// Expiring returns items expiring within the next 30 days, or already expired
func (s *InventoryService) Expiring(ctx context.Context) ([]domain.Item, error) {
	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Expiring(items, dates.Of(s.now())), nil
}

// GetItem gets an item
func (s *InventoryService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	return s.itemRepo.GetByID(ctx, id)
}

// CreateItem creates a new inventory item
func (s *InventoryService) CreateItem(ctx context.Context, a *actor.Actor, in *domain.ItemInput) (*domain.Item, error) {
	if err := authorize(a, permissions.InventoryWrite); err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Check(); err != nil {
		return nil, err
	}

	id, err := s.itemRepo.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("item_id", id).Str("actor", a.ProfileID).Msg("inventory item created")
	return s.itemRepo.GetByID(ctx, id)
}

// UpdateItem replaces an item's editable fields
func (s *InventoryService) UpdateItem(ctx context.Context, a *actor.Actor, id string, in *domain.ItemInput) (*domain.Item, error) {
	if err := authorize(a, permissions.InventoryWrite); err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Check(); err != nil {
		return nil, err
	}

	if err := s.itemRepo.Update(ctx, id, in); err != nil {
		return nil, err
	}
	return s.itemRepo.GetByID(ctx, id)
}

// Transaction operations

// RecordTransaction applies a stock transaction to an item. The item row is
// locked, the new stock computed and written together with the transaction
// record in one database transaction.
func (s *InventoryService) RecordTransaction(ctx context.Context, a *actor.Actor, itemID string, in *domain.TransactionInput) (*TransactionResult, error) {
	if err := authorize(a, permissions.InventoryTransact); err != nil {
		return nil, err
	}

	var (
		item *domain.Item
		tx   *domain.Transaction
	)
	err := s.db.Transaction(ctx, func(q *sqlx.Tx) error {
		var err error
		item, err = s.itemRepo.GetForUpdate(ctx, q, itemID)
		if err != nil {
			return err
		}

		if s.policy.RejectOverdraw {
			if err := domain.CheckOverdraw(item.CurrentStock, in.TransactionType, in.Quantity); err != nil {
				return err
			}
		}
		newStock, err := domain.ApplyTransaction(item.CurrentStock, in.TransactionType, in.Quantity)
		if err != nil {
			return err
		}

		tx = &domain.Transaction{
			ItemID:          item.ID,
			TransactionType: in.TransactionType,
			Quantity:        in.Quantity,
			PreviousStock:   item.CurrentStock,
			NewStock:        newStock,
			Reason:          in.Reason,
			PerformedBy:     a.ProfileID,
			ItemName:        item.Name,
		}
		if err := s.txRepo.Create(ctx, q, tx); err != nil {
			return err
		}
		if err := s.itemRepo.SetStock(ctx, q, item.ID, newStock); err != nil {
			return err
		}
		item.CurrentStock = newStock
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("item_id", item.ID).
		Str("type", string(tx.TransactionType)).
		Int("previous_stock", tx.PreviousStock).
		Int("new_stock", tx.NewStock).
		Str("actor", a.ProfileID).
		Msg("stock transaction recorded")

	s.publisher.PublishTransactionRecorded(ctx, tx)
	if item.IsLowStock() {
		s.publisher.PublishLowStock(ctx, item)
	}

	return &TransactionResult{Transaction: tx, Item: item}, nil
}

// RecentTransactions returns the latest stock transactions, newest first
func (s *InventoryService) RecentTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.txRepo.ListRecent(ctx, repository.RecentTransactionsLimit)
}

// Export renders every item as an XLSX workbook localized with l
func (s *InventoryService) Export(ctx context.Context, l *i18n.Localizer) ([]byte, error) {
	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	data, err := export.Workbook(items, l)
	if err != nil {
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to build inventory export", http.StatusInternalServerError)
	}

	s.logger.Info().Int("items", len(items)).Msg("inventory exported")
	return data, nil
}

func authorize(a *actor.Actor, permission string) error {
	if a == nil {
		return errors.Unauthorized("not authenticated")
	}
	if !a.Can(permission) {
		return errors.Forbidden("missing permission " + permission)
	}
	return nil
}
