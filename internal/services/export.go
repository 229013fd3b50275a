package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/diewo77/bill-ease/auth"
	"github.com/diewo77/bill-ease/internal/invoice"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const registerSheet = "Invoices"

var registerHeaders = []string{
	"Invoice ID", "Date", "Buyer", "GSTIN", "Vehicle Model", "Chassis",
	"Subtotal", "CGST", "SGST", "Hypothecation", "RTO", "Total",
}

// Export writes the filtered invoice register as an XLSX workbook with one
// row per invoice and a closing totals row.
func (s *InvoiceService) Export(ctx context.Context, sess auth.Session, term string) ([]byte, error) {
	records, err := s.List(ctx, sess, term)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", registerSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(registerSheet, "A1", &registerHeaders); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(registerHeaders))
	if err := f.SetCellStyle(registerSheet, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	sum := invoice.Totals{Subtotal: decimal.Zero, Tax: decimal.Zero, GrandTotal: decimal.Zero}
	for i, r := range records {
		row := []any{
			r.ID,
			r.CreatedAt.Format("2006-01-02"),
			r.Buyer.Name,
			r.Buyer.GSTIN,
			r.Vehicle.Model,
			r.Vehicle.Chassis,
			amount(r.Totals.Subtotal),
			amount(r.Totals.CGST()),
			amount(r.Totals.SGST()),
			amount(r.Charges.Hypothecation),
			amount(r.Charges.Registration),
			amount(r.Totals.GrandTotal),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(registerSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
		sum.Subtotal = sum.Subtotal.Add(r.Totals.Subtotal)
		sum.Tax = sum.Tax.Add(r.Totals.Tax)
		sum.GrandTotal = sum.GrandTotal.Add(r.Totals.GrandTotal)
	}

	totalRow := len(records) + 2
	totals := []any{"Total", "", "", "", "", "", amount(sum.Subtotal), amount(sum.CGST()), amount(sum.SGST()), "", "", amount(sum.GrandTotal)}
	cell, _ := excelize.CoordinatesToCellName(1, totalRow)
	if err := f.SetSheetRow(registerSheet, cell, &totals); err != nil {
		return nil, fmt.Errorf("failed to write totals: %w", err)
	}
	if err := f.SetCellStyle(registerSheet, cell, fmt.Sprintf("%s%d", lastCol, totalRow), bold); err != nil {
		return nil, fmt.Errorf("failed to style totals: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	s.logger.Info("invoice register exported",
		zap.Uint("user_id", sess.UserID),
		zap.String("term", term),
		zap.Int("invoices", len(records)))
	return buf.Bytes(), nil
}

// amount rounds to paise for the spreadsheet cell.
func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
