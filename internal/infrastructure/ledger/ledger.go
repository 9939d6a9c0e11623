// Package ledger writes invoice lists as XLSX workbooks.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SheetName is the worksheet holding the ledger rows
const SheetName = "Invoices"

// ContentType is the MIME type of the generated workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{
	"Invoice Number",
	"Client",
	"Client Email",
	"Issue Date",
	"Due Date",
	"Status",
	"Currency",
	"Subtotal",
	"Tax Rate (%)",
	"Tax",
	"Total",
}

// Writer renders invoices into a workbook
type Writer struct {
	logger *zap.Logger
}

// NewWriter creates a ledger writer
func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger}
}

// Write returns the XLSX bytes for invoices, one row per invoice in the
// given order, with a per-currency totals block below the rows.
func (w *Writer) Write(ctx context.Context, invoices []invoicing.Invoice) ([]byte, error) {
	start := time.Now()
	// Casers keep state and are not safe for concurrent use
	title := cases.Title(language.English)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name ledger sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("failed to create money style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(SheetName, "A1", last, headerStyle)

	type sums struct{ subtotal, tax, total decimal.Decimal }
	var currencies []string
	byCurrency := map[string]*sums{}

	row := 2
	for i := range invoices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inv := &invoices[i]
		totals := inv.Totals()

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}
		write(1, inv.InvoiceNumber)
		write(2, inv.Client.Name)
		write(3, inv.Client.Email)
		write(4, inv.IssueDate)
		write(5, inv.DueDate)
		write(6, title.String(inv.Status.String()))
		write(7, inv.Currency)
		write(8, totals.Subtotal.Round(2).InexactFloat64())
		write(9, totals.TaxRate.InexactFloat64())
		write(10, totals.Tax.Round(2).InexactFloat64())
		write(11, totals.Total.Round(2).InexactFloat64())

		s, ok := byCurrency[inv.Currency]
		if !ok {
			s = &sums{}
			byCurrency[inv.Currency] = s
			currencies = append(currencies, inv.Currency)
		}
		s.subtotal = s.subtotal.Add(totals.Subtotal.Round(2))
		s.tax = s.tax.Add(totals.Tax.Round(2))
		s.total = s.total.Add(totals.Total.Round(2))
		row++
	}
	if row > 2 {
		_ = f.SetCellStyle(SheetName, "H2", fmt.Sprintf("K%d", row-1), moneyStyle)
	}

	// totals block
	if len(currencies) > 0 {
		row++
		for _, cur := range currencies {
			s := byCurrency[cur]
			_ = f.SetCellValue(SheetName, fmt.Sprintf("F%d", row), "Total")
			_ = f.SetCellValue(SheetName, fmt.Sprintf("G%d", row), cur)
			_ = f.SetCellValue(SheetName, fmt.Sprintf("H%d", row), s.subtotal.InexactFloat64())
			_ = f.SetCellValue(SheetName, fmt.Sprintf("J%d", row), s.tax.InexactFloat64())
			_ = f.SetCellValue(SheetName, fmt.Sprintf("K%d", row), s.total.InexactFloat64())
			_ = f.SetCellStyle(SheetName, fmt.Sprintf("H%d", row), fmt.Sprintf("K%d", row), moneyStyle)
			row++
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 18)
	_ = f.SetColWidth(SheetName, "B", "C", 28)
	_ = f.SetColWidth(SheetName, "D", "E", 12)
	_ = f.SetColWidth(SheetName, "F", "G", 10)
	_ = f.SetColWidth(SheetName, "H", "K", 14)
	_ = f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write ledger: %w", err)
	}

	w.logger.Info("ledger written",
		zap.Int("rows", len(invoices)),
		zap.Int("currencies", len(currencies)),
		zap.Duration("elapsed", time.Since(start)))
	return buf.Bytes(), nil
}
