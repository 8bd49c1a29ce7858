// Package reporting renders order validation audits as console tables and
// Excel workbooks.
package reporting

import "github.com/quantfold/brokerage/pkg/types"

// OrderAudit is one order's trip through a brokerage model: the verdict,
// the rejection reason if any, and the computed fee and margin.
type OrderAudit struct {
	Order          *types.Order
	Accepted       bool
	Code           string
	Message        string
	FeeValue       float64
	FeeCurrency    string
	RequiredMargin float64
}

// Summary aggregates an audit run.
type Summary struct {
	Model     string
	Total     int
	Accepted  int
	Rejected  int
	TotalFees float64
}

// Summarize tallies a slice of audits for the given model name.
func Summarize(model string, audits []OrderAudit) Summary {
	s := Summary{Model: model, Total: len(audits)}
	for _, a := range audits {
		if a.Accepted {
			s.Accepted++
			s.TotalFees += a.FeeValue
		} else {
			s.Rejected++
		}
	}
	return s
}
