package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Order validation metrics
	ordersCheckedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brokerage_orders_checked_total",
			Help: "Total number of orders run through a brokerage model",
		},
		[]string{"model", "operation"},
	)

	ordersRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brokerage_orders_rejected_total",
			Help: "Total number of orders rejected by a brokerage model",
		},
		[]string{"model", "code"},
	)

	// Fee metrics
	feesCharged = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "brokerage_order_fee",
			Help:    "Distribution of computed order fees",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	// Parser metrics
	parseErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brokerage_parse_errors_total",
			Help: "Total number of malformed CSV lines skipped by the data parsers",
		},
		[]string{"format"},
	)

	linesParsedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brokerage_lines_parsed_total",
			Help: "Total number of CSV lines decoded by the data parsers",
		},
		[]string{"format"},
	)
)

func init() {
	prometheus.MustRegister(ordersCheckedTotal)
	prometheus.MustRegister(ordersRejectedTotal)
	prometheus.MustRegister(feesCharged)
	prometheus.MustRegister(parseErrorsTotal)
	prometheus.MustRegister(linesParsedTotal)
}

// MetricsHandler serves the Prometheus metrics endpoint.
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint.
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordOrderChecked records one pass through CanSubmitOrder or CanUpdateOrder.
func RecordOrderChecked(model, operation string) {
	ordersCheckedTotal.WithLabelValues(model, operation).Inc()
}

// RecordOrderRejected records a rejection with its machine code.
func RecordOrderRejected(model, code string) {
	ordersRejectedTotal.WithLabelValues(model, code).Inc()
}

// RecordFee records a computed order fee.
func RecordFee(model string, fee float64) {
	feesCharged.WithLabelValues(model).Observe(fee)
}

// RecordParseError records a malformed CSV line for the given format
// ("trade", "quote", "depth").
func RecordParseError(format string) {
	parseErrorsTotal.WithLabelValues(format).Inc()
}

// RecordLineParsed records a successfully decoded CSV line.
func RecordLineParsed(format string) {
	linesParsedTotal.WithLabelValues(format).Inc()
}
