package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/diewo77/bill-ease/internal/invoice"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrRender wraps every failure that prevents a document from being produced.
var ErrRender = errors.New("pdf: rendering failed")

const (
	pageHeight   = 297.0
	marginLeft   = 10.0
	marginRight  = 190.0
	marginTop    = 10.0
	marginBottom = 15.0
	totalsX      = 140.0
	rowHeight    = 8.0
	lineHeight   = 5.0
	itemColumn   = 1
	logoImage    = "logo"
)

var (
	columnWidths  = []float64{10, 80, 25, 35, 40}
	columnHeaders = []string{"#", "Item", "Quantity", "Price", "Total"}
	columnAligns  = []string{"C", "L", "C", "R", "R"}

	termsAndConditions = []string{
		"1. Payment due within 30 days.",
		"2. Goods once sold will not be taken back.",
	}
)

// Options tune presentation only.
type Options struct {
	// CurrencySymbol prefixes every amount in the totals block.
	CurrencySymbol string
	// DateLayout formats the issue date.
	DateLayout string
	// Compress enables content stream compression.
	Compress bool
}

// DefaultOptions uses "Rs." because the built-in PDF fonts carry no rupee glyph.
func DefaultOptions() Options {
	return Options{CurrencySymbol: "Rs.", DateLayout: "02/01/2006", Compress: true}
}

// Invoice is everything needed to lay out one document.
type Invoice struct {
	Record    invoice.Record
	Agency    invoice.Party
	Inventory invoice.Inventory
	// Logo is optional raw PNG, JPEG or GIF data.
	Logo []byte
}

// Document is a finished PDF.
type Document struct {
	Filename string
	Rows     []Row
	Bytes    []byte
}

// Filename returns the download name for an invoice ID.
func Filename(id string) string { return "invoice_" + id + ".pdf" }

// Renderer lays out tax invoices. It holds no per-document state and is safe
// for concurrent use.
type Renderer struct {
	logger *zap.Logger
	opts   Options
}

func NewRenderer(logger *zap.Logger, opts Options) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = DefaultOptions().CurrencySymbol
	}
	if opts.DateLayout == "" {
		opts.DateLayout = DefaultOptions().DateLayout
	}
	return &Renderer{logger: logger, opts: opts}
}

// Render produces the PDF for doc. Logo problems are logged and the document is
// produced without it; anything else is returned wrapped in ErrRender.
func (r *Renderer) Render(doc Invoice) (*Document, error) {
	rec := doc.Record
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: missing invoice identifier", ErrRender)
	}
	for i, item := range rec.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d has quantity %d", ErrRender, i+1, item.Quantity)
		}
	}

	f := gofpdf.New("P", "mm", "A4", "")
	f.SetCompression(r.opts.Compress)
	f.SetAutoPageBreak(false, marginBottom)
	f.SetTitle("Tax Invoice "+rec.ID, true)
	f.AddPage()

	p := newPage(f)
	rows := BuildRows(rec.Items, doc.Inventory)

	if len(doc.Logo) > 0 {
		r.drawLogo(p, rec.ID, doc.Logo)
	}
	r.drawParty(p, "", doc.Agency, "Agency Name", "Agency Address", 16)
	r.drawTitle(p, rec)
	p.c.advance(5)
	r.drawParty(p, "Bill To:", rec.Buyer, "Buyer Name", "Buyer Address", 12)
	r.drawVehicle(p, rec.Vehicle)
	r.drawTable(p, rows)
	p.c.advance(10)
	r.drawTotals(p, rec)
	p.c.advance(15)
	r.drawTerms(p)

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	r.logger.Debug("invoice rendered",
		zap.String("invoice_id", rec.ID),
		zap.Int("rows", len(rows)),
		zap.Int("pages", f.PageCount()),
		zap.Int("bytes", buf.Len()))

	return &Document{Filename: Filename(rec.ID), Rows: rows, Bytes: buf.Bytes()}, nil
}

// drawLogo never fails the document: decode errors and panics from the image
// parser are logged and swallowed.
func (r *Renderer) drawLogo(p *page, id string, logo []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("logo embed panicked, continuing without logo",
				zap.String("invoice_id", id), zap.Any("panic", rec))
			p.f.ClearError()
		}
	}()

	imgType, ok := imageType(logo)
	if !ok {
		r.logger.Warn("unsupported logo format, continuing without logo",
			zap.String("invoice_id", id), zap.String("content_type", http.DetectContentType(logo)))
		return
	}
	opts := gofpdf.ImageOptions{ImageType: imgType}
	p.f.RegisterImageOptionsReader(logoImage, opts, bytes.NewReader(logo))
	if err := p.f.Error(); err != nil {
		r.logger.Warn("logo decode failed, continuing without logo",
			zap.String("invoice_id", id), zap.Error(err))
		p.f.ClearError()
		return
	}
	p.f.ImageOptions(logoImage, marginLeft, p.c.y, 30, 30, false, opts, 0, "")
	p.c.advance(35)
}

func (r *Renderer) drawParty(p *page, heading string, party invoice.Party, nameFallback, addrFallback string, nameSize float64) {
	if heading != "" {
		p.c.reserve(7)
		p.text(marginLeft, heading, 14)
		p.c.advance(7)
	}
	p.c.reserve(24)
	p.text(marginLeft, orDefault(party.Name, nameFallback), nameSize)
	p.c.advance(7)
	p.text(marginLeft, orDefault(party.Address, addrFallback), 12)
	p.c.advance(7)
	p.text(marginLeft, "GSTIN: "+orDefault(party.GSTIN, "Not Provided"), 12)
	p.c.advance(10)
}

// drawTitle writes the right-aligned header at fixed offsets on the first page;
// it does not move the cursor.
func (r *Renderer) drawTitle(p *page, rec invoice.Record) {
	p.textRight(marginRight, 20, "Tax Invoice", 18)
	p.textRight(marginRight, 30, "Invoice ID: "+rec.ID, 12)
	p.textRight(marginRight, 40, "Date: "+rec.CreatedAt.Format(r.opts.DateLayout), 12)
}

func (r *Renderer) drawVehicle(p *page, v invoice.Vehicle) {
	p.c.reserve(31)
	p.text(marginLeft, "Vehicle Details:", 14)
	p.c.advance(7)
	p.text(marginLeft, "Model: "+orDefault(v.Model, "N/A"), 12)
	p.c.advance(7)
	p.text(marginLeft, "Chassis: "+orDefault(v.Chassis, "N/A"), 12)
	p.c.advance(7)
	p.text(marginLeft, "Serial: "+orDefault(v.Serial, "N/A"), 12)
	p.c.advance(10)
}

func (r *Renderer) drawTable(p *page, rows []Row) {
	p.c.reserve(2 * rowHeight)
	r.drawHeader(p)
	p.f.SetFont("Helvetica", "", 10)
	for i, row := range rows {
		cells := []string{
			strconv.Itoa(row.Seq),
			row.Name,
			strconv.Itoa(row.Quantity),
			row.UnitPrice.StringFixed(2),
			row.Total.StringFixed(2),
		}
		if p.c.reserve(p.rowHeightFor(cells)) {
			r.drawHeader(p)
			p.f.SetFont("Helvetica", "", 10)
		}
		p.f.SetFillColor(242, 242, 242)
		p.f.SetTextColor(0, 0, 0)
		p.row(cells, i%2 == 1)
	}
}

func (r *Renderer) drawHeader(p *page) {
	p.f.SetFont("Helvetica", "B", 10)
	p.f.SetFillColor(41, 128, 185)
	p.f.SetTextColor(255, 255, 255)
	p.row(columnHeaders, true)
	p.f.SetTextColor(0, 0, 0)
}

func (r *Renderer) drawTotals(p *page, rec invoice.Record) {
	t := rec.Totals
	lines := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Subtotal", t.Subtotal},
		{"CGST (6%)", t.CGST()},
		{"SGST (6%)", t.SGST()},
		{"Hypothecation Charges", rec.Charges.Hypothecation},
		{"RTO Charges", rec.Charges.Registration},
	}
	p.c.reserve(float64(len(lines)+1) * 7)
	for _, l := range lines {
		p.textAt(totalsX, p.c.y, l.label+": "+r.money(l.amount), 12)
		p.c.advance(7)
	}
	p.textAt(totalsX, p.c.y, "Total: "+r.money(t.GrandTotal), 14)
}

func (r *Renderer) drawTerms(p *page) {
	p.c.reserve(7 + 5*float64(len(termsAndConditions)))
	p.text(marginLeft, "Terms and Conditions:", 12)
	p.c.advance(7)
	for _, clause := range termsAndConditions {
		p.text(marginLeft, clause, 10)
		p.c.advance(5)
	}
}

func (r *Renderer) money(v decimal.Decimal) string {
	return r.opts.CurrencySymbol + " " + v.StringFixed(2)
}

func imageType(data []byte) (string, bool) {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG", true
	case "image/jpeg":
		return "JPG", true
	case "image/gif":
		return "GIF", true
	}
	return "", false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
