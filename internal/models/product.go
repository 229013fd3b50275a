package models

import (
	"strconv"
	"time"

	"github.com/diewo77/bill-ease/internal/invoice"
)

// Product is an inventory entry owned by one agency.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name      string `gorm:"size:255;not null" json:"name"`
	UnitPrice Amount `gorm:"not null" json:"price"`
	Stock     int    `gorm:"not null;default:0" json:"stock"`
}

// Domain converts the row to the calculator's view of a product.
func (p Product) Domain() invoice.Product {
	return invoice.Product{
		ID:        strconv.FormatUint(uint64(p.ID), 10),
		Name:      p.Name,
		UnitPrice: p.UnitPrice.Decimal,
		Stock:     p.Stock,
	}
}
