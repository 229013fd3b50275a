package services

import (
	"context"
	"fmt"

	"github.com/diewo77/bill-ease/auth"
	"github.com/diewo77/bill-ease/internal/invoice"
	"github.com/diewo77/bill-ease/internal/models"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const recentInvoices = 5

// Dashboard summarises one agency's activity.
type Dashboard struct {
	Products   int              `json:"products"`
	Invoices   int64            `json:"invoices"`
	Revenue    decimal.Decimal  `json:"revenue"`
	StockValue decimal.Decimal  `json:"stock_value"`
	Recent     []invoice.Record `json:"recent"`
}

type DashboardService struct {
	db        *gorm.DB
	inventory *InventoryService
	invoices  *InvoiceService
}

func NewDashboardService(db *gorm.DB, inventory *InventoryService, invoices *InvoiceService) *DashboardService {
	return &DashboardService{db: db, inventory: inventory, invoices: invoices}
}

// Summary counts products and invoices, sums stored grand totals as revenue
// and price × stock as stock value, and lists the latest invoices.
func (s *DashboardService) Summary(ctx context.Context, sess auth.Session) (Dashboard, error) {
	products, err := s.inventory.List(ctx, sess)
	if err != nil {
		return Dashboard{}, err
	}

	var totals []decimal.Decimal
	err = s.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Scopes(models.OwnedBy(sess.UserID)).
		Pluck("grand_total", &totals).Error
	if err != nil {
		return Dashboard{}, fmt.Errorf("sum revenue: %w", err)
	}

	recent, err := s.invoices.rows(ctx, sess, recentInvoices)
	if err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		Products: len(products),
		Invoices: int64(len(totals)),
		Revenue:  lo.Reduce(totals, func(acc decimal.Decimal, t decimal.Decimal, _ int) decimal.Decimal { return acc.Add(t) }, decimal.Zero),
		StockValue: lo.Reduce(products, func(acc decimal.Decimal, p invoice.Product, _ int) decimal.Decimal {
			return acc.Add(invoice.LineTotal(p.UnitPrice, p.Stock))
		}, decimal.Zero),
		Recent: lo.Map(recent, func(r models.Invoice, _ int) invoice.Record { return r.Record() }),
	}, nil
}
