package pdf

import "github.com/jung-kurt/gofpdf"

// cursor is the running vertical position. It only moves down within a page.
type cursor struct {
	y       float64
	top     float64
	bottom  float64
	newPage func()
}

func (c *cursor) advance(h float64) { c.y += h }

// reserve starts a new page when h does not fit below the cursor. It reports
// whether a break happened.
func (c *cursor) reserve(h float64) bool {
	if c.y+h <= c.bottom || c.newPage == nil {
		return false
	}
	c.newPage()
	c.y = c.top
	return true
}

type page struct {
	f  *gofpdf.Fpdf
	tr func(string) string
	c  cursor
}

func newPage(f *gofpdf.Fpdf) *page {
	return &page{
		f:  f,
		tr: f.UnicodeTranslatorFromDescriptor(""),
		c:  cursor{y: marginTop, top: marginTop, bottom: pageHeight - marginBottom, newPage: f.AddPage},
	}
}

// text draws at the cursor baseline.
func (p *page) text(x float64, s string, size float64) {
	p.textAt(x, p.c.y, s, size)
}

func (p *page) textAt(x, y float64, s string, size float64) {
	p.f.SetFont("Helvetica", "", size)
	p.f.Text(x, y, p.tr(s))
}

func (p *page) textRight(right, y float64, s string, size float64) {
	p.f.SetFont("Helvetica", "", size)
	s = p.tr(s)
	p.f.Text(right-p.f.GetStringWidth(s), y, s)
}

// lines splits cell i into the lines it needs at the current font size.
// Only the Item column wraps; the others always fit on one line.
func (p *page) lines(i int, cell string) []string {
	text := p.tr(cell)
	if i != itemColumn || text == "" {
		return []string{text}
	}
	parts := p.f.SplitLines([]byte(text), columnWidths[i])
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, string(part))
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}

// rowHeightFor is the height row will use for cells.
func (p *page) rowHeightFor(cells []string) float64 {
	n := len(p.lines(itemColumn, cells[itemColumn]))
	if n <= 1 {
		return rowHeight
	}
	return float64(n)*lineHeight + rowHeight - lineHeight
}

// row draws one table row at the cursor and advances past it. A long item
// name wraps inside its cell and the whole row grows to fit.
func (p *page) row(cells []string, fill bool) {
	h := p.rowHeightFor(cells)
	x := marginLeft
	for i, cell := range cells {
		p.f.SetXY(x, p.c.y)
		text := p.lines(i, cell)
		if len(text) == 1 {
			p.f.CellFormat(columnWidths[i], h, text[0], "1", 0, columnAligns[i], fill, 0, "")
		} else {
			p.f.CellFormat(columnWidths[i], h, "", "1", 0, "", fill, 0, "")
			top := p.c.y + (h-float64(len(text))*lineHeight)/2
			for j, line := range text {
				p.f.SetXY(x, top+float64(j)*lineHeight)
				p.f.CellFormat(columnWidths[i], lineHeight, line, "", 0, columnAligns[i], false, 0, "")
			}
		}
		x += columnWidths[i]
	}
	p.c.advance(h)
}
