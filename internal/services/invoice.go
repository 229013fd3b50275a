package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/bill-ease/auth"
	"github.com/diewo77/bill-ease/internal/invoice"
	"github.com/diewo77/bill-ease/internal/models"
	"github.com/diewo77/bill-ease/pdf"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateResult is the outcome of a successful submission. Record is always
// persisted; Document is nil and RenderErr set when only rendering failed.
type CreateResult struct {
	Record    invoice.Record
	Rows      []pdf.Row
	Document  *pdf.Document
	RenderErr error
}

type InvoiceService struct {
	db        *gorm.DB
	inventory *InventoryService
	settings  *SettingsService
	renderer  *pdf.Renderer
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewInvoiceService(db *gorm.DB, inventory *InventoryService, settings *SettingsService, renderer *pdf.Renderer, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		db:        db,
		inventory: inventory,
		settings:  settings,
		renderer:  renderer,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Create prices draft against the user's current inventory, persists it and
// renders the PDF from the same values. Nothing is rendered when persistence
// fails; a render failure leaves the stored record in place.
func (s *InvoiceService) Create(ctx context.Context, sess auth.Session, draft invoice.Draft) (*CreateResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if err := invalid(draft.Validate()); err != nil {
		return nil, err
	}
	inv, err := s.inventory.Inventory(ctx, sess)
	if err != nil {
		return nil, err
	}

	rec := draft.Freeze(sess.UserID, inv, s.now().UTC())
	rec.ID = s.newID()
	row := models.NewInvoice(rec, inv)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("persist invoice: %w", err)
	}

	unresolved := lo.CountBy(row.Items, func(it models.InvoiceItem) bool { return !it.Resolved })
	s.logger.Info("invoice created",
		zap.Uint("user_id", sess.UserID),
		zap.String("invoice_id", rec.ID),
		zap.Int("items", len(rec.Items)),
		zap.Int("unresolved_items", unresolved),
		zap.String("total", rec.Totals.GrandTotal.StringFixed(2)))

	res := &CreateResult{Record: rec, Rows: pdf.BuildRows(rec.Items, inv)}
	doc, err := s.render(ctx, sess, rec, inv)
	if err != nil {
		s.logger.Error("invoice stored but not rendered", zap.String("invoice_id", rec.ID), zap.Error(err))
		res.RenderErr = err
		return res, nil
	}
	res.Document = doc
	return res, nil
}

// List returns the user's invoices, newest first, narrowed by term.
func (s *InvoiceService) List(ctx context.Context, sess auth.Session, term string) ([]invoice.Record, error) {
	rows, err := s.rows(ctx, sess, 0)
	if err != nil {
		return nil, err
	}
	records := lo.Map(rows, func(r models.Invoice, _ int) invoice.Record { return r.Record() })
	return invoice.Filter(records, term), nil
}

// Get returns one invoice as stored. Invoices of other users are reported as
// ErrNotFound.
func (s *InvoiceService) Get(ctx context.Context, sess auth.Session, id string) (invoice.Record, error) {
	row, err := s.row(ctx, sess, id)
	if err != nil {
		return invoice.Record{}, err
	}
	return row.Record(), nil
}

// Document re-renders a stored invoice from its line snapshot with the
// agency's current settings and logo.
func (s *InvoiceService) Document(ctx context.Context, sess auth.Session, id string) (*pdf.Document, error) {
	row, err := s.row(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, sess, row.Record(), row.Snapshot())
}

func (s *InvoiceService) render(ctx context.Context, sess auth.Session, rec invoice.Record, inv invoice.Inventory) (*pdf.Document, error) {
	agency, err := s.settings.Agency(ctx, sess)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(pdf.Invoice{
		Record:    rec,
		Agency:    agency.Party(),
		Inventory: inv,
		Logo:      s.settings.AgencyLogo(ctx, agency),
	})
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") })
}

// rows loads the user's invoices newest first; limit <= 0 loads all.
func (s *InvoiceService) rows(ctx context.Context, sess auth.Session, limit int) ([]models.Invoice, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).
		Scopes(models.OwnedBy(sess.UserID), withItems).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.Invoice
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return rows, nil
}

func (s *InvoiceService) row(ctx context.Context, sess auth.Session, id string) (models.Invoice, error) {
	if err := requireSession(sess); err != nil {
		return models.Invoice{}, err
	}
	var row models.Invoice
	err := s.db.WithContext(ctx).
		Scopes(models.OwnedBy(sess.UserID), withItems).
		Where("number = ?", id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Invoice{}, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Invoice{}, fmt.Errorf("load invoice %s: %w", id, err)
	}
	return row, nil
}
