package domain

import (
	"strings"

	"github.com/pulsmedic/pulsmedic-backend/pkg/dates"
	"github.com/shopspring/decimal"
)

// ExpiryWindowDays is how far ahead an expiry date counts as expiring soon
const ExpiryWindowDays = 30

// Search filters items by a case-insensitive substring of the item name,
// category name or supplier. A blank query returns the input unchanged.
func Search(items []Item, query string) []Item {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}

	out := []Item{}
	for _, item := range items {
		if contains(item.Name, q) || containsPtr(item.CategoryName, q) || containsPtr(item.Supplier, q) {
			out = append(out, item)
		}
	}
	return out
}

// LowStock returns items at or below their minimum stock level
func LowStock(items []Item) []Item {
	out := []Item{}
	for _, item := range items {
		if item.IsLowStock() {
			out = append(out, item)
		}
	}
	return out
}

// Expiring returns items whose expiry date is at most ExpiryWindowDays after
// today. Items that have already expired are included.
func Expiring(items []Item, today dates.Date) []Item {
	limit := today.AddDays(ExpiryWindowDays)
	out := []Item{}
	for _, item := range items {
		if item.ExpiryDate != nil && !item.ExpiryDate.After(limit) {
			out = append(out, item)
		}
	}
	return out
}

// TotalStockValue sums the stock value of every priced item
func TotalStockValue(items []Item) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].StockValue())
	}
	return total
}

func contains(s, q string) bool {
	return strings.Contains(strings.ToLower(s), q)
}

func containsPtr(s *string, q string) bool {
	return s != nil && contains(*s, q)
}
