package pdf

import (
	"github.com/diewo77/bill-ease/internal/invoice"
	"github.com/shopspring/decimal"
)

// UnknownProduct labels rows whose product reference did not resolve.
const UnknownProduct = "Unknown"

// Row is one line of the itemised table.
type Row struct {
	Seq       int             `json:"seq"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
	Resolved  bool            `json:"resolved"`
}

// BuildRows resolves each item against inv. Unresolved items are kept and
// shown as UnknownProduct at a zero price, so len(rows) == len(items).
func BuildRows(items []invoice.LineItem, inv invoice.Inventory) []Row {
	rows := make([]Row, 0, len(items))
	for i, item := range items {
		row := Row{Seq: i + 1, Name: UnknownProduct, Quantity: item.Quantity, UnitPrice: decimal.Zero}
		if p, ok := inv.Lookup(item.ProductID); ok {
			row.Name = p.Name
			row.UnitPrice = p.UnitPrice
			row.Resolved = true
		}
		row.Total = invoice.LineTotal(row.UnitPrice, item.Quantity)
		rows = append(rows, row)
	}
	return rows
}
