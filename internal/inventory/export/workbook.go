// Package export renders the inventory as an XLSX workbook.
package export

import (
	"bytes"
	"fmt"

	"github.com/pulsmedic/pulsmedic-backend/internal/inventory/domain"
	"github.com/pulsmedic/pulsmedic-backend/pkg/i18n"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the generated workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type column struct {
	key   string
	width float64
	value func(*domain.Item) interface{}
}

var columns = []column{
	{"export.name", 32, func(i *domain.Item) interface{} { return i.Name }},
	{"export.category", 22, func(i *domain.Item) interface{} { return deref(i.CategoryName) }},
	{"export.unit", 12, func(i *domain.Item) interface{} { return i.UnitOfMeasure }},
	{"export.current_stock", 14, func(i *domain.Item) interface{} { return i.CurrentStock }},
	{"export.min_stock", 14, func(i *domain.Item) interface{} { return i.MinStockLevel }},
	{"export.unit_price", 14, func(i *domain.Item) interface{} {
		if !i.UnitPrice.Valid {
			return nil
		}
		return i.UnitPrice.Decimal.InexactFloat64()
	}},
	{"export.stock_value", 16, func(i *domain.Item) interface{} { return i.StockValue().InexactFloat64() }},
	{"export.supplier", 22, func(i *domain.Item) interface{} { return deref(i.Supplier) }},
	{"export.expiry_date", 14, func(i *domain.Item) interface{} {
		if i.ExpiryDate == nil {
			return nil
		}
		return i.ExpiryDate.String()
	}},
}

// Workbook builds a workbook with every item on the first sheet and the
// low-stock items on the second. Headers and sheet names come from l.
func Workbook(items []domain.Item, l *i18n.Localizer) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	itemsSheet := l.T("export.sheet_items")
	index, err := f.NewSheet(itemsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := writeSheet(f, itemsSheet, items, l, styles); err != nil {
		return nil, err
	}

	lowSheet := l.T("export.sheet_low_stock")
	if _, err := f.NewSheet(lowSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeSheet(f, lowSheet, domain.LowStock(items), l, styles); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type sheetStyles struct {
	header int
	money  int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("failed to create header style: %w", err)
	}

	moneyFormat := "#,##0.00"
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFormat})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("failed to create number style: %w", err)
	}

	return sheetStyles{header: header, money: money}, nil
}

func writeSheet(f *excelize.File, sheet string, items []domain.Item, l *i18n.Localizer, styles sheetStyles) error {
	for c, col := range columns {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, l.T(col.key)); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, styles.header); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}

		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, col.width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for r := range items {
		row := r + 2
		for c, col := range columns {
			value := col.value(&items[r])
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
			if col.key == "export.unit_price" || col.key == "export.stock_value" {
				if err := f.SetCellStyle(sheet, cell, cell, styles.money); err != nil {
					return fmt.Errorf("failed to set number style: %w", err)
				}
			}
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
