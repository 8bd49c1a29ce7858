package reporting

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// ConsoleReporter renders audits as rounded-style tables.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a reporter writing to out.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// PrintAudits renders one row per order with the verdict and fee.
func (r *ConsoleReporter) PrintAudits(model string, audits []OrderAudit) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("ORDER VALIDATION - %s", model)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"ID", "Symbol", "Type", "Qty", "Verdict", "Code", "Fee", "Margin"})
	for _, a := range audits {
		verdict := "accepted"
		if !a.Accepted {
			verdict = "rejected"
		}
		fee := ""
		if a.Accepted {
			fee = fmt.Sprintf("%.4f %s", a.FeeValue, a.FeeCurrency)
		}
		t.AppendRow(table.Row{
			a.Order.ID,
			a.Order.Symbol.Ticker,
			a.Order.Type,
			fmt.Sprintf("%v", a.Order.Quantity),
			verdict,
			a.Code,
			fee,
			fmt.Sprintf("%.2f", a.RequiredMargin),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})

	t.Render()
}

// PrintSummary renders the aggregate counts for a run.
func (r *ConsoleReporter) PrintSummary(s Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("SUMMARY")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"Model", s.Model},
		{"Orders checked", s.Total},
		{"Accepted", s.Accepted},
		{"Rejected", s.Rejected},
		{"Total fees", fmt.Sprintf("%.4f", s.TotalFees)},
	})
	t.Render()
}
