package invoice

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// GSTRate is the combined GST applied to the subtotal (CGST 6% + SGST 6%).
var GSTRate = decimal.RequireFromString("0.12")

var two = decimal.NewFromInt(2)

// LineItem references an inventory product by ID.
type LineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Product is a read-only inventory snapshot entry.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

// Party identifies a seller (agency) or a buyer.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	GSTIN   string `json:"gstin"`
}

// Vehicle is purely descriptive.
type Vehicle struct {
	Model   string `json:"model"`
	Chassis string `json:"chassis"`
	Serial  string `json:"serial"`
}

// Surcharges are flat amounts added after tax.
type Surcharges struct {
	Hypothecation decimal.Decimal `json:"hypothecation"`
	Registration  decimal.Decimal `json:"rto"`
}

// Totals is derived from line items and surcharges; it is never stored apart
// from the Record that produced it.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"gst"`
	GrandTotal decimal.Decimal `json:"total"`
}

// CGST returns the central half of the tax.
func (t Totals) CGST() decimal.Decimal { return t.Tax.Div(two) }

// SGST returns the state half of the tax.
func (t Totals) SGST() decimal.Decimal { return t.Tax.Div(two) }

// Record is a submitted invoice. It is immutable once persisted.
type Record struct {
	ID        string     `json:"id"`
	OwnerID   uint       `json:"owner_id"`
	Items     []LineItem `json:"items"`
	Buyer     Party      `json:"buyer"`
	Vehicle   Vehicle    `json:"vehicle"`
	Charges   Surcharges `json:"charges"`
	CreatedAt time.Time  `json:"created_at"`
	Totals    Totals     `json:"totals"`
}

// Draft is the editable form state. It is passed by value and only becomes a
// Record through Freeze.
type Draft struct {
	Items   []LineItem `json:"items"`
	Buyer   Party      `json:"buyer"`
	Vehicle Vehicle    `json:"vehicle"`
	Charges Surcharges `json:"charges"`
}

// Freeze computes totals against inv and returns a Record owned by ownerID.
// The returned record has its own copy of the line items and no ID yet.
func (d Draft) Freeze(ownerID uint, inv Inventory, now time.Time) Record {
	items := make([]LineItem, len(d.Items))
	copy(items, d.Items)
	return Record{
		OwnerID:   ownerID,
		Items:     items,
		Buyer:     d.Buyer,
		Vehicle:   d.Vehicle,
		Charges:   d.Charges,
		CreatedAt: now,
		Totals:    ComputeTotals(items, inv, d.Charges),
	}
}

// Inventory indexes a product snapshot by ID.
type Inventory struct {
	byID map[string]Product
}

// NewInventory builds an index over products. Later duplicates win.
func NewInventory(products []Product) Inventory {
	return Inventory{byID: lo.KeyBy(products, func(p Product) string { return p.ID })}
}

// Lookup resolves a product reference.
func (i Inventory) Lookup(id string) (Product, bool) {
	p, ok := i.byID[id]
	return p, ok
}
