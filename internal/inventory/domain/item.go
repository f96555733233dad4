// Package domain holds the inventory catalogue, stock transaction rules and
// the filtered stock views.
package domain

import (
	"strings"
	"time"

	"github.com/pulsmedic/pulsmedic-backend/pkg/dates"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// DefaultUnit is the unit of measure for items that do not name one ("komad", piece).
	DefaultUnit = "kom"
	// DefaultMinStock is the minimum stock level for items that do not set one.
	DefaultMinStock = 10
)

// Category groups inventory items
type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CategoryInput is the body of a category create
type CategoryInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
}

// Item is a stocked article, joined with its category name
type Item struct {
	ID            string              `db:"id" json:"id"`
	CategoryID    string              `db:"category_id" json:"category_id"`
	Name          string              `db:"name" json:"name"`
	Description   *string             `db:"description" json:"description"`
	UnitOfMeasure string              `db:"unit_of_measure" json:"unit_of_measure"`
	CurrentStock  int                 `db:"current_stock" json:"current_stock"`
	MinStockLevel int                 `db:"min_stock_level" json:"min_stock_level"`
	UnitPrice     decimal.NullDecimal `db:"unit_price" json:"unit_price"`
	Supplier      *string             `db:"supplier" json:"supplier"`
	ExpiryDate    *dates.Date         `db:"expiry_date" json:"expiry_date"`
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `db:"updated_at" json:"updated_at"`

	CategoryName *string `db:"category_name" json:"category_name"`
}

// IsLowStock reports whether the stock is at or below the minimum level
func (i *Item) IsLowStock() bool {
	return i.CurrentStock <= i.MinStockLevel
}

// StockValue is current stock times unit price, zero when the price is unknown
func (i *Item) StockValue() decimal.Decimal {
	if !i.UnitPrice.Valid {
		return decimal.Zero
	}
	return i.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(i.CurrentStock)))
}

// ItemInput is the editable part of an item, shared by create and update
type ItemInput struct {
	CategoryID    string              `json:"category_id" validate:"required,uuid"`
	Name          string              `json:"name" validate:"required,max=200"`
	Description   *string             `json:"description"`
	UnitOfMeasure string              `json:"unit_of_measure" validate:"max=20"`
	CurrentStock  int                 `json:"current_stock" validate:"gte=0"`
	MinStockLevel *int                `json:"min_stock_level" validate:"omitempty,gte=0"`
	UnitPrice     decimal.NullDecimal `json:"unit_price"`
	Supplier      *string             `json:"supplier" validate:"omitempty,max=200"`
	ExpiryDate    *dates.Date         `json:"expiry_date"`
}

// Normalize trims the name and applies the unit and minimum stock defaults.
func (in *ItemInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.UnitOfMeasure = strings.TrimSpace(in.UnitOfMeasure)
	if in.UnitOfMeasure == "" {
		in.UnitOfMeasure = DefaultUnit
	}
	if in.MinStockLevel == nil {
		min := DefaultMinStock
		in.MinStockLevel = &min
	}
}

// Check covers the rules struct tags cannot express
func (in *ItemInput) Check() error {
	if in.UnitPrice.Valid && in.UnitPrice.Decimal.IsNegative() {
		return errors.Validation(map[string]string{"unit_price": "must not be negative"})
	}
	return nil
}
