package domain

import (
	"testing"

	"github.com/pulsmedic/pulsmedic-backend/pkg/dates"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTransaction(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		typ      TransactionType
		quantity int
		want     int
		wantErr  error
	}{
		{"in adds", 5, TransactionIn, 8, 13, nil},
		{"out subtracts", 8, TransactionOut, 5, 3, nil},
		{"out to exactly zero", 5, TransactionOut, 5, 0, nil},
		{"out clamps at zero", 5, TransactionOut, 8, 0, nil},
		{"adjustment sets", 5, TransactionAdjustment, 42, 42, nil},
		{"adjustment to zero", 5, TransactionAdjustment, 0, 0, nil},
		{"in needs a quantity", 5, TransactionIn, 0, 0, errors.ErrValidation},
		{"out needs a quantity", 5, TransactionOut, 0, 0, errors.ErrValidation},
		{"negative adjustment", 5, TransactionAdjustment, -1, 0, errors.ErrValidation},
		{"unknown type", 5, TransactionType("transfer"), 1, 0, errors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyTransaction(tt.current, tt.typ, tt.quantity)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckOverdraw(t *testing.T) {
	assert.NoError(t, CheckOverdraw(5, TransactionOut, 5))
	assert.NoError(t, CheckOverdraw(0, TransactionIn, 100))
	assert.NoError(t, CheckOverdraw(0, TransactionAdjustment, 100))

	err := CheckOverdraw(5, TransactionOut, 8)
	assert.True(t, errors.Is(err, errors.ErrInsufficientStock))
}

func strPtr(s string) *string { return &s }

func catalogue() []Item {
	return []Item{
		{ID: "gloves", Name: "Rukavice nitrilne", CategoryName: strPtr("Potrošni materijal"), Supplier: strPtr("Galenika")},
		{ID: "paracetamol", Name: "Paracetamol 500mg", CategoryName: strPtr("Lekovi"), Supplier: strPtr("Hemofarm")},
		{ID: "gauze", Name: "Gaza sterilna", CategoryName: strPtr("Potrošni materijal")},
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"gloves", "paracetamol", "gauze"}},
		{"   ", []string{"gloves", "paracetamol", "gauze"}},
		{"PARACETAMOL", []string{"paracetamol"}},
		{"potrošni", []string{"gloves", "gauze"}},
		{"hemo", []string{"paracetamol"}},
		{"insulin", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Search(catalogue(), tt.query)))
		})
	}
}

func TestSearch_Idempotent(t *testing.T) {
	once := Search(catalogue(), "gaza")
	assert.Equal(t, once, Search(once, "gaza"))
	assert.Equal(t, ids(Search(catalogue(), "gaza")), ids(Search(catalogue(), "GAZA")))
}

func TestLowStock_Inclusive(t *testing.T) {
	items := []Item{
		{ID: "below", CurrentStock: 3, MinStockLevel: 5},
		{ID: "equal", CurrentStock: 5, MinStockLevel: 5},
		{ID: "above", CurrentStock: 6, MinStockLevel: 5},
		{ID: "empty", CurrentStock: 0, MinStockLevel: 0},
	}

	assert.Equal(t, []string{"below", "equal", "empty"}, ids(LowStock(items)))
}

func TestExpiring(t *testing.T) {
	today := dates.New(2024, 3, 1)
	at := func(days int) *dates.Date {
		d := today.AddDays(days)
		return &d
	}
	items := []Item{
		{ID: "expired", ExpiryDate: at(-3)},
		{ID: "today", ExpiryDate: at(0)},
		{ID: "day-30", ExpiryDate: at(30)},
		{ID: "day-31", ExpiryDate: at(31)},
		{ID: "no-expiry"},
	}

	assert.Equal(t, []string{"expired", "today", "day-30"}, ids(Expiring(items, today)))
}

func TestStockValue(t *testing.T) {
	items := []Item{
		{CurrentStock: 4, UnitPrice: decimal.NewNullDecimal(decimal.RequireFromString("12.50"))},
		{CurrentStock: 3, UnitPrice: decimal.NewNullDecimal(decimal.RequireFromString("0.10"))},
		{CurrentStock: 100},
	}

	assert.True(t, decimal.RequireFromString("50.30").Equal(TotalStockValue(items)), TotalStockValue(items).String())
	assert.True(t, items[2].StockValue().IsZero())
}

func TestItemInput(t *testing.T) {
	in := ItemInput{Name: "  Gaza  "}
	in.Normalize()
	assert.Equal(t, "Gaza", in.Name)
	assert.Equal(t, DefaultUnit, in.UnitOfMeasure)
	require.NotNil(t, in.MinStockLevel)
	assert.Equal(t, DefaultMinStock, *in.MinStockLevel)

	zero := 0
	in = ItemInput{UnitOfMeasure: "kut", MinStockLevel: &zero}
	in.Normalize()
	assert.Equal(t, "kut", in.UnitOfMeasure)
	assert.Equal(t, 0, *in.MinStockLevel)

	in = ItemInput{UnitPrice: decimal.NewNullDecimal(decimal.NewFromInt(-1))}
	assert.True(t, errors.Is(in.Check(), errors.ErrValidation))
}

func ids(items []Item) []string {
	out := []string{}
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
