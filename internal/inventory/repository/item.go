package repository

import (
	"context"

	"github.com/pulsmedic/pulsmedic-backend/internal/inventory/domain"
	"github.com/pulsmedic/pulsmedic-backend/pkg/database"
	"github.com/shopspring/decimal"
)

const selectItems = `
	SELECT i.id, i.category_id, i.name, i.description, i.unit_of_measure, i.current_stock,
	       i.min_stock_level, i.unit_price, i.supplier, i.expiry_date, i.created_at, i.updated_at,
	       c.name AS category_name
	FROM inventory_items i
	LEFT JOIN inventory_categories c ON c.id = i.category_id`

// ItemRepository handles inventory item persistence
type ItemRepository struct {
	db *database.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// List returns every item with its category name, ordered by item name
func (r *ItemRepository) List(ctx context.Context) ([]domain.Item, error) {
	items := []domain.Item{}
	if err := r.db.SelectContext(ctx, &items, selectItems+` ORDER BY i.name`); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID gets an item by ID
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	var item domain.Item
	if err := r.db.GetContext(ctx, &item, selectItems+` WHERE i.id = $1`, id); err != nil {
		return nil, database.MapError(err, "inventory_item")
	}
	return &item, nil
}

// GetForUpdate reads an item and locks its row until q's transaction ends
func (r *ItemRepository) GetForUpdate(ctx context.Context, q database.Querier, id string) (*domain.Item, error) {
	var item domain.Item
	if err := q.GetContext(ctx, &item, selectItems+` WHERE i.id = $1 FOR UPDATE OF i`, id); err != nil {
		return nil, database.MapError(err, "inventory_item")
	}
	return &item, nil
}

// Create inserts an item and returns its ID
func (r *ItemRepository) Create(ctx context.Context, in *domain.ItemInput) (string, error) {
	var id string
	query := `
		INSERT INTO inventory_items (category_id, name, description, unit_of_measure, current_stock,
			min_stock_level, unit_price, supplier, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.db.GetContext(ctx, &id, query,
		in.CategoryID, in.Name, in.Description, in.UnitOfMeasure, in.CurrentStock,
		in.MinStockLevel, in.UnitPrice, in.Supplier, in.ExpiryDate,
	)
	if err != nil {
		return "", database.MapError(err, "inventory_item")
	}
	return id, nil
}

// Update replaces the editable fields of an item
func (r *ItemRepository) Update(ctx context.Context, id string, in *domain.ItemInput) error {
	var updated string
	query := `
		UPDATE inventory_items SET
			category_id = $2, name = $3, description = $4, unit_of_measure = $5, current_stock = $6,
			min_stock_level = $7, unit_price = $8, supplier = $9, expiry_date = $10
		WHERE id = $1
		RETURNING id`

	err := r.db.GetContext(ctx, &updated, query, id,
		in.CategoryID, in.Name, in.Description, in.UnitOfMeasure, in.CurrentStock,
		in.MinStockLevel, in.UnitPrice, in.Supplier, in.ExpiryDate,
	)
	return database.MapError(err, "inventory_item")
}

// SetStock writes a new stock level
func (r *ItemRepository) SetStock(ctx context.Context, q database.Querier, id string, stock int) error {
	_, err := q.ExecContext(ctx, `UPDATE inventory_items SET current_stock = $2 WHERE id = $1`, id, stock)
	return database.MapError(err, "inventory_item")
}

// CountLowStock counts items at or below their minimum stock level
func (r *ItemRepository) CountLowStock(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM inventory_items WHERE current_stock <= min_stock_level`)
	return n, err
}

// TotalStockValue sums current stock times unit price over priced items
func (r *ItemRepository) TotalStockValue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total,
		`SELECT COALESCE(sum(current_stock * unit_price), 0) FROM inventory_items WHERE unit_price IS NOT NULL`)
	return total, err
}
