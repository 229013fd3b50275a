package invoice

import "github.com/shopspring/decimal"

// ComputeTotals derives subtotal, GST and grand total for items priced against
// inv. Items whose product cannot be resolved contribute nothing.
//
// No rounding is applied; callers format to two places for display only.
func ComputeTotals(items []LineItem, inv Inventory, charges Surcharges) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		p, ok := inv.Lookup(item.ProductID)
		if !ok {
			continue
		}
		subtotal = subtotal.Add(LineTotal(p.UnitPrice, item.Quantity))
	}
	tax := subtotal.Mul(GSTRate)
	return Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		GrandTotal: subtotal.Add(tax).Add(charges.Hypothecation).Add(charges.Registration),
	}
}

// LineTotal returns price × qty.
func LineTotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}
