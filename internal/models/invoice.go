package models

import (
	"time"

	"github.com/diewo77/bill-ease/internal/invoice"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Invoice is a persisted tax invoice. Totals are written once at creation
// and read back as stored.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	// UserID is the owner of this invoice
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	// Number is the public identifier (UUID).
	Number string `gorm:"size:36;uniqueIndex;not null" json:"id"`

	BuyerName    string `gorm:"size:255" json:"buyer_name"`
	BuyerAddress string `gorm:"size:500" json:"buyer_address"`
	BuyerGSTIN   string `gorm:"size:32;index" json:"buyer_gstin"`

	VehicleModel   string `gorm:"size:255" json:"vehicle_model"`
	VehicleChassis string `gorm:"size:100" json:"vehicle_chassis"`
	VehicleSerial  string `gorm:"size:100" json:"vehicle_serial"`

	Hypothecation Amount `gorm:"not null" json:"hypothecation"`
	Registration  Amount `gorm:"not null" json:"rto"`

	Subtotal   Amount `gorm:"not null" json:"subtotal"`
	Tax        Amount `gorm:"not null" json:"gst"`
	GrandTotal Amount `gorm:"not null" json:"total"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
}

// InvoiceItem snapshots one line as it was resolved when the invoice was
// created, so later inventory edits do not change a stored document.
type InvoiceItem struct {
	ID        uint `gorm:"primaryKey" json:"-"`
	InvoiceID uint `gorm:"index;not null" json:"-"`
	Position  int  `gorm:"not null" json:"-"`

	ProductRef  string `gorm:"size:64;not null" json:"product_id"`
	Quantity    int    `gorm:"not null" json:"quantity"`
	ProductName string `gorm:"size:255" json:"name"`
	UnitPrice   Amount `gorm:"not null" json:"price"`
	Resolved    bool   `gorm:"not null" json:"resolved"`
}

// NewInvoice builds the row for rec, snapshotting each line against inv.
func NewInvoice(rec invoice.Record, inv invoice.Inventory) Invoice {
	items := make([]InvoiceItem, 0, len(rec.Items))
	for i, it := range rec.Items {
		row := InvoiceItem{Position: i, ProductRef: it.ProductID, Quantity: it.Quantity, UnitPrice: NewAmount(decimal.Zero)}
		if p, ok := inv.Lookup(it.ProductID); ok {
			row.ProductName = p.Name
			row.UnitPrice = NewAmount(p.UnitPrice)
			row.Resolved = true
		}
		items = append(items, row)
	}
	return Invoice{
		CreatedAt:      rec.CreatedAt,
		UserID:         rec.OwnerID,
		Number:         rec.ID,
		BuyerName:      rec.Buyer.Name,
		BuyerAddress:   rec.Buyer.Address,
		BuyerGSTIN:     rec.Buyer.GSTIN,
		VehicleModel:   rec.Vehicle.Model,
		VehicleChassis: rec.Vehicle.Chassis,
		VehicleSerial:  rec.Vehicle.Serial,
		Hypothecation:  NewAmount(rec.Charges.Hypothecation),
		Registration:   NewAmount(rec.Charges.Registration),
		Subtotal:       NewAmount(rec.Totals.Subtotal),
		Tax:            NewAmount(rec.Totals.Tax),
		GrandTotal:     NewAmount(rec.Totals.GrandTotal),
		Items:          items,
	}
}

// Record converts the row back to the domain record. Items must be loaded
// and ordered by Position.
func (i Invoice) Record() invoice.Record {
	return invoice.Record{
		ID:      i.Number,
		OwnerID: i.UserID,
		Items: lo.Map(i.Items, func(it InvoiceItem, _ int) invoice.LineItem {
			return invoice.LineItem{ProductID: it.ProductRef, Quantity: it.Quantity}
		}),
		Buyer:     invoice.Party{Name: i.BuyerName, Address: i.BuyerAddress, GSTIN: i.BuyerGSTIN},
		Vehicle:   invoice.Vehicle{Model: i.VehicleModel, Chassis: i.VehicleChassis, Serial: i.VehicleSerial},
		Charges:   invoice.Surcharges{Hypothecation: i.Hypothecation.Decimal, Registration: i.Registration.Decimal},
		CreatedAt: i.CreatedAt,
		Totals:    invoice.Totals{Subtotal: i.Subtotal.Decimal, Tax: i.Tax.Decimal, GrandTotal: i.GrandTotal.Decimal},
	}
}

// Snapshot rebuilds the inventory the invoice was created against from its
// resolved lines.
func (i Invoice) Snapshot() invoice.Inventory {
	resolved := lo.Filter(i.Items, func(it InvoiceItem, _ int) bool { return it.Resolved })
	return invoice.NewInventory(lo.Map(resolved, func(it InvoiceItem, _ int) invoice.Product {
		return invoice.Product{ID: it.ProductRef, Name: it.ProductName, UnitPrice: it.UnitPrice.Decimal}
	}))
}
