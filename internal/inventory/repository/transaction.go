package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pulsmedic/pulsmedic-backend/internal/inventory/domain"
	"github.com/pulsmedic/pulsmedic-backend/pkg/database"
)

// RecentTransactionsLimit caps the transaction history view
const RecentTransactionsLimit = 50

// TransactionRepository handles stock transaction persistence
type TransactionRepository struct {
	db *database.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create records a transaction using q, normally the transaction that also
// writes the item's new stock.
func (r *TransactionRepository) Create(ctx context.Context, q database.Querier, t *domain.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	query := `
		INSERT INTO inventory_transactions (
			id, item_id, transaction_type, quantity, previous_stock, new_stock, reason, performed_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	err := q.QueryRowxContext(ctx, query,
		t.ID, t.ItemID, t.TransactionType, t.Quantity, t.PreviousStock, t.NewStock, t.Reason, t.PerformedBy,
	).Scan(&t.CreatedAt)
	return database.MapError(err, "inventory_transaction")
}

// ListRecent returns the newest transactions with item and performer names
func (r *TransactionRepository) ListRecent(ctx context.Context, limit int) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `
		SELECT t.id, t.item_id, t.transaction_type, t.quantity, t.previous_stock, t.new_stock,
		       t.reason, t.performed_by, t.created_at,
		       i.name AS item_name, p.full_name AS performer_name
		FROM inventory_transactions t
		JOIN inventory_items i ON i.id = t.item_id
		LEFT JOIN profiles p ON p.id = t.performed_by
		ORDER BY t.created_at DESC
		LIMIT $1`
	if err := r.db.SelectContext(ctx, &transactions, query, limit); err != nil {
		return nil, err
	}
	return transactions, nil
}
