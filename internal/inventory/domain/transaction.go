package domain

import (
	"fmt"
	"time"

	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
)

// TransactionType is the kind of stock change
type TransactionType string

const (
	// TransactionIn adds received goods to the stock
	TransactionIn TransactionType = "in"
	// TransactionOut withdraws goods from the stock
	TransactionOut TransactionType = "out"
	// TransactionAdjustment sets the stock to a counted value
	TransactionAdjustment TransactionType = "adjustment"
)

// Transaction is an immutable record of one stock change
type Transaction struct {
	ID              string          `db:"id" json:"id"`
	ItemID          string          `db:"item_id" json:"item_id"`
	TransactionType TransactionType `db:"transaction_type" json:"transaction_type"`
	Quantity        int             `db:"quantity" json:"quantity"`
	PreviousStock   int             `db:"previous_stock" json:"previous_stock"`
	NewStock        int             `db:"new_stock" json:"new_stock"`
	Reason          *string         `db:"reason" json:"reason"`
	PerformedBy     string          `db:"performed_by" json:"performed_by"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`

	ItemName      string  `db:"item_name" json:"item_name"`
	PerformerName *string `db:"performer_name" json:"performer_name"`
}

// TransactionInput is the body of a stock transaction
type TransactionInput struct {
	TransactionType TransactionType `json:"transaction_type" validate:"required,oneof=in out adjustment"`
	Quantity        int             `json:"quantity" validate:"gte=0"`
	Reason          *string         `json:"reason"`
}

// ApplyTransaction computes the stock after a transaction. Incoming goods add
// to the stock, withdrawals subtract from it but never below zero, and an
// adjustment replaces it with the counted quantity. In and out need a
// quantity of at least one; an adjustment may set the stock to zero.
func ApplyTransaction(current int, t TransactionType, quantity int) (int, error) {
	switch t {
	case TransactionIn:
		if quantity < 1 {
			return 0, quantityError("must be at least 1")
		}
		return current + quantity, nil
	case TransactionOut:
		if quantity < 1 {
			return 0, quantityError("must be at least 1")
		}
		if quantity > current {
			return 0, nil
		}
		return current - quantity, nil
	case TransactionAdjustment:
		if quantity < 0 {
			return 0, quantityError("must not be negative")
		}
		return quantity, nil
	default:
		return 0, errors.Validation(map[string]string{
			"transaction_type": fmt.Sprintf("unknown transaction type %q", t),
		})
	}
}

// CheckOverdraw rejects a withdrawal larger than the stock on hand.
func CheckOverdraw(current int, t TransactionType, quantity int) error {
	if t == TransactionOut && quantity > current {
		return errors.InsufficientStock(current, quantity)
	}
	return nil
}

func quantityError(msg string) error {
	return errors.Validation(map[string]string{"quantity": msg})
}
