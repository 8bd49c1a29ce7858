package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// ExcelReporter writes audit runs to an xlsx workbook with one sheet of
// per-order rows and one summary sheet.
type ExcelReporter struct{}

// NewExcelReporter creates an Excel reporter.
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

// WriteAuditsXLSX writes the audit workbook to path, creating directories as
// needed.
func (r *ExcelReporter) WriteAuditsXLSX(model string, audits []OrderAudit, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const ordersSheet = "Orders"
	const summarySheet = "Summary"
	fx.SetSheetName(fx.GetSheetName(0), ordersSheet)
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return err
	}

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	header := []interface{}{"ID", "Symbol", "Security Type", "Order Type", "Quantity",
		"Limit Price", "Stop Price", "Verdict", "Code", "Message", "Fee", "Fee Currency", "Required Margin"}
	if err := fx.SetSheetRow(ordersSheet, "A1", &header); err != nil {
		return err
	}
	if err := fx.SetCellStyle(ordersSheet, "A1", "M1", headerStyle); err != nil {
		return err
	}

	for i, a := range audits {
		verdict := "accepted"
		if !a.Accepted {
			verdict = "rejected"
		}
		row := []interface{}{
			a.Order.ID,
			a.Order.Symbol.Ticker,
			string(a.Order.Symbol.SecurityType),
			string(a.Order.Type),
			a.Order.Quantity,
			a.Order.LimitPrice,
			a.Order.StopPrice,
			verdict,
			a.Code,
			a.Message,
			a.FeeValue,
			a.FeeCurrency,
			a.RequiredMargin,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := fx.SetSheetRow(ordersSheet, cell, &row); err != nil {
			return err
		}
	}

	s := Summarize(model, audits)
	summaryRows := [][]interface{}{
		{"Model", s.Model},
		{"Orders checked", s.Total},
		{"Accepted", s.Accepted},
		{"Rejected", s.Rejected},
		{"Total fees", s.TotalFees},
	}
	for i, row := range summaryRows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := fx.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	return fx.SaveAs(path)
}
