package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/quantfold/brokerage/internal/brokerage"
	"github.com/quantfold/brokerage/internal/config"
	"github.com/quantfold/brokerage/internal/logger"
	"github.com/quantfold/brokerage/internal/monitoring"
	"github.com/quantfold/brokerage/pkg/reporting"
	"github.com/quantfold/brokerage/pkg/types"
)

// Orders CSV layout (header required):
// id,ticker,security_type,quantity,order_type,limit_price,stop_price,tif,market_price,holdings

func main() {
	var (
		ordersFile = flag.String("orders", "", "Orders CSV file to validate")
		broker     = flag.String("brokerage", "", "Brokerage model (default from env)")
		account    = flag.String("account", "", "Account type: cash or margin")
		xlsxPath   = flag.String("xlsx", "", "Optional xlsx audit report path")
		serve      = flag.Bool("metrics", false, "Serve prometheus metrics while running")
	)
	flag.Parse()

	if *ordersFile == "" {
		log.Fatal("Please specify an orders CSV file with -orders")
	}

	cfg := config.Load()
	if *broker == "" {
		*broker = cfg.Brokerage.Name
	}
	if *account == "" {
		*account = cfg.Brokerage.AccountType
	}
	accountType := types.AccountTypeMargin
	if strings.EqualFold(*account, string(types.AccountTypeCash)) {
		accountType = types.AccountTypeCash
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	if *serve {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Monitoring.MetricsPort)
			http.Handle("/metrics", monitoring.NewMetricsHandler())
			zlog.Info("serving metrics", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, nil); err != nil {
				zlog.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	model, err := brokerage.NewFactory().CreateModel(*broker, accountType)
	if err != nil {
		log.Fatalf("Failed to create brokerage model: %v", err)
	}

	rows, err := loadOrders(*ordersFile)
	if err != nil {
		log.Fatalf("Failed to read orders file: %v", err)
	}
	zlog.Info("orders loaded", zap.Int("count", len(rows)), zap.String("model", model.Name()))

	audits := make([]reporting.OrderAudit, 0, len(rows))
	for _, row := range rows {
		audits = append(audits, auditOrder(model, accountType, row))
	}

	console := reporting.NewConsoleReporter(os.Stdout)
	console.PrintAudits(model.Name(), audits)
	console.PrintSummary(reporting.Summarize(model.Name(), audits))

	if *xlsxPath != "" {
		if err := reporting.NewExcelReporter().WriteAuditsXLSX(model.Name(), audits, *xlsxPath); err != nil {
			log.Fatalf("Failed to write xlsx report: %v", err)
		}
		zlog.Info("xlsx report written", zap.String("path", *xlsxPath))
	}
}

// orderRow is one parsed line of the orders CSV: the order plus the market
// context needed to validate it.
type orderRow struct {
	order       *types.Order
	marketPrice float64
	holdings    float64
}

func loadOrders(path string) ([]orderRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s has no order rows", path)
	}

	rows := make([]orderRow, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := parseOrderRow(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseOrderRow(record []string) (orderRow, error) {
	if len(record) != 10 {
		return orderRow{}, fmt.Errorf("want 10 fields, got %d", len(record))
	}

	id, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return orderRow{}, fmt.Errorf("bad order id %q", record[0])
	}
	st, err := types.ParseSecurityType(record[2])
	if err != nil {
		return orderRow{}, err
	}

	floats := make([]float64, 0, 5)
	for _, idx := range []int{3, 5, 6, 8, 9} {
		v := 0.0
		if strings.TrimSpace(record[idx]) != "" {
			v, err = strconv.ParseFloat(record[idx], 64)
			if err != nil {
				return orderRow{}, fmt.Errorf("bad numeric field %q", record[idx])
			}
		}
		floats = append(floats, v)
	}

	order := &types.Order{
		ID:          id,
		Symbol:      types.NewSymbol(record[1], st, ""),
		Quantity:    floats[0],
		Type:        types.OrderType(strings.ToLower(record[4])),
		LimitPrice:  floats[1],
		StopPrice:   floats[2],
		TimeInForce: types.TimeInForce(strings.ToLower(record[7])),
		Status:      types.OrderStatusNew,
	}
	return orderRow{order: order, marketPrice: floats[3], holdings: floats[4]}, nil
}

func auditOrder(model brokerage.Model, accountType types.AccountType, row orderRow) reporting.OrderAudit {
	security := types.NewSecurity(row.order.Symbol)
	security.Price.Last = row.marketPrice
	security.Holdings = row.holdings
	security.Leverage = model.Leverage(security)

	audit := reporting.OrderAudit{Order: row.order}
	ok, event := model.CanSubmitOrder(security, row.order)
	audit.Accepted = ok
	if event != nil {
		audit.Code = event.Code
		audit.Message = event.Message
	}
	if !ok {
		return audit
	}

	fee := model.FeeModel(security).Fee(security, row.order)
	audit.FeeValue = fee.Value
	audit.FeeCurrency = fee.Currency
	monitoring.RecordFee(model.Name(), fee.Value)

	bpm := model.BuyingPowerModel(security, accountType)
	audit.RequiredMargin = bpm.RequiredMargin(security, row.order)
	return audit
}
