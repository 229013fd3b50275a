package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/diewo77/bill-ease/auth"
	"github.com/diewo77/bill-ease/internal/invoice"
	"github.com/diewo77/bill-ease/internal/models"
	"github.com/diewo77/bill-ease/validation"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductInput is the raw form of a new product. Price and Stock stay as text
// so non-numeric input is reported per field.
type ProductInput struct {
	Name  string
	Price string
	Stock string
}

// Validate parses the input, filling v with every problem found.
func (in ProductInput) Validate(v validation.Violations) models.Product {
	validation.Required("name", in.Name, v)
	price := validation.ParseDecimal("price", in.Price, v)
	if _, bad := v["price"]; !bad && validation.Amount("price", price, v) {
		validation.PositiveDecimal("price", price, v)
	}
	stock := validation.ParseInt("stock", in.Stock, v)
	if _, bad := v["stock"]; !bad && stock < 0 {
		v["stock"] = "must_not_be_negative"
	}
	return models.Product{Name: strings.TrimSpace(in.Name), UnitPrice: models.NewAmount(price), Stock: stock}
}

type InventoryService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewInventoryService(db *gorm.DB, logger *zap.Logger) *InventoryService {
	return &InventoryService{db: db, logger: logger}
}

// List returns every product owned by the session user, oldest first.
func (s *InventoryService) List(ctx context.Context, sess auth.Session) ([]invoice.Product, error) {
	rows, err := s.rows(ctx, sess)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(p models.Product, _ int) invoice.Product { return p.Domain() }), nil
}

// Inventory indexes the session user's products for pricing.
func (s *InventoryService) Inventory(ctx context.Context, sess auth.Session) (invoice.Inventory, error) {
	products, err := s.List(ctx, sess)
	if err != nil {
		return invoice.Inventory{}, err
	}
	return invoice.NewInventory(products), nil
}

func (s *InventoryService) rows(ctx context.Context, sess auth.Session) ([]models.Product, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	var rows []models.Product
	if err := s.db.WithContext(ctx).Scopes(models.OwnedBy(sess.UserID)).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return rows, nil
}

// Add validates in and stores it. Validation failures return a
// *ValidationError and write nothing.
func (s *InventoryService) Add(ctx context.Context, sess auth.Session, in ProductInput) (invoice.Product, error) {
	if err := requireSession(sess); err != nil {
		return invoice.Product{}, err
	}
	v := validation.Violations{}
	row := in.Validate(v)
	if err := invalid(v); err != nil {
		return invoice.Product{}, err
	}
	row.UserID = sess.UserID
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return invoice.Product{}, fmt.Errorf("create product: %w", err)
	}
	s.logger.Info("product added",
		zap.Uint("user_id", sess.UserID),
		zap.Uint("product_id", row.ID),
		zap.String("name", row.Name))
	return row.Domain(), nil
}
