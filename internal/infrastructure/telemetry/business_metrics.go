package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when BusinessMetrics is built without a meter
var ErrMeterNil = errors.New("business metrics: meter cannot be nil")

// StockLevelProvider reports inventory health for periodic collection
type StockLevelProvider interface {
	LowStockCount(ctx context.Context) (int64, error)
}

// StockLevelFunc adapts a function to StockLevelProvider
type StockLevelFunc func(ctx context.Context) (int64, error)

// LowStockCount implements StockLevelProvider.
func (f StockLevelFunc) LowStockCount(ctx context.Context) (int64, error) {
	return f(ctx)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	StockProvider   StockLevelProvider
}

// BusinessMetrics counts what happens at the till: sales, rejected
// checkouts, partially applied sales, stock alerts and advisor failures.
type BusinessMetrics struct {
	logger *zap.Logger

	salesTotal             *Counter
	revenueTotal           *Counter
	saleUnits              *Histogram
	salesRejected          *Counter
	reconciliationRequired *Counter
	reconciliationRepaired *Counter
	stockBelowThreshold    *Counter
	lowStockProducts       *Gauge
	advisorFailures        *Counter
	eventsDispatched       *Counter

	interval      time.Duration
	stockProvider StockLevelProvider
	stopChan      chan struct{}
	stopOnce      sync.Once
	startOnce     sync.Once
}

// NewBusinessMetrics creates every business instrument on cfg.Meter
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.CollectInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	bm := &BusinessMetrics{
		logger:        logger,
		interval:      interval,
		stockProvider: cfg.StockProvider,
		stopChan:      make(chan struct{}),
	}

	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&bm.salesTotal, "sales_recorded_total", "Sales recorded", "{sales}"},
		{&bm.revenueTotal, "sales_revenue_total", "Revenue from recorded sales", "UGX"},
		{&bm.salesRejected, "sales_rejected_total", "Checkouts rejected before anything was written", "{sales}"},
		{&bm.reconciliationRequired, "sale_reconciliation_required", "Sale lines persisted without their stock decrement", "{lines}"},
		{&bm.reconciliationRepaired, "sale_reconciliation_repaired_total", "Sale lines repaired by reconciliation", "{lines}"},
		{&bm.stockBelowThreshold, "stock_below_threshold_total", "Products that crossed into low stock", "{products}"},
		{&bm.advisorFailures, "advisor_failures_total", "Advisor requests answered with fallback text", "{requests}"},
		{&bm.eventsDispatched, "domain_events_dispatched_total", "Domain event handler invocations", "{events}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	bm.saleUnits, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "sale_units",
		Description: "Units sold per sale",
		Unit:        "{units}",
		Boundaries:  SaleItemsBuckets,
	})
	if err != nil {
		return nil, err
	}

	bm.lowStockProducts, err = NewGauge(cfg.Meter, "low_stock_products", "Products at or below their threshold", "{products}")
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// NewNopBusinessMetrics returns metrics that record nothing
func NewNopBusinessMetrics() *BusinessMetrics {
	bm, err := NewBusinessMetrics(BusinessMetricsConfig{Meter: noop.NewMeterProvider().Meter("nop")})
	if err != nil {
		panic(err)
	}
	return bm
}

// RecordSale counts a persisted sale
func (bm *BusinessMetrics) RecordSale(ctx context.Context, paymentMethod string, total decimal.Decimal, units int64) {
	method := AttrPaymentMethod.String(paymentMethod)
	bm.salesTotal.Inc(ctx, method)
	bm.revenueTotal.Add(ctx, total.IntPart(), method)
	bm.saleUnits.Record(ctx, float64(units), method)
}

// RecordSaleRejected counts a checkout that failed before writing
func (bm *BusinessMetrics) RecordSaleRejected(ctx context.Context, reason string) {
	bm.salesRejected.Inc(ctx, AttrReason.String(reason))
}

// RecordReconciliationRequired counts sale lines left unapplied
func (bm *BusinessMetrics) RecordReconciliationRequired(ctx context.Context, lines int) {
	bm.reconciliationRequired.Add(ctx, int64(lines))
}

// RecordReconciliationRepaired counts sale lines applied by a repair run
func (bm *BusinessMetrics) RecordReconciliationRepaired(ctx context.Context, lines int) {
	bm.reconciliationRepaired.Add(ctx, int64(lines))
}

// RecordStockBelowThreshold counts a low stock crossing
func (bm *BusinessMetrics) RecordStockBelowThreshold(ctx context.Context) {
	bm.stockBelowThreshold.Inc(ctx)
}

// RecordLowStockCount records the current number of low stock products
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, n int64) {
	bm.lowStockProducts.Record(ctx, n)
}

// RecordAdvisorFailure counts an advisor call that fell back to fixed text
func (bm *BusinessMetrics) RecordAdvisorFailure(ctx context.Context, operation, reason string) {
	bm.advisorFailures.Inc(ctx, AttrOperation.String(operation), AttrReason.String(reason))
}

// EventDispatched counts event handler outcomes. It satisfies the event
// bus DispatchObserver.
func (bm *BusinessMetrics) EventDispatched(ctx context.Context, eventType string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	bm.eventsDispatched.Inc(ctx, AttrEventType.String(eventType), AttrOutcome.String(outcome))
}

// StartPeriodicCollection samples the stock provider until Stop. It runs
// at most once per BusinessMetrics.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context) {
	if bm.stockProvider == nil {
		return
	}
	bm.startOnce.Do(func() {
		go bm.collectLoop(ctx)
	})
}

func (bm *BusinessMetrics) collectLoop(ctx context.Context) {
	ticker := time.NewTicker(bm.interval)
	defer ticker.Stop()

	bm.collect(ctx)
	for {
		select {
		case <-ticker.C:
			bm.collect(ctx)
		case <-bm.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (bm *BusinessMetrics) collect(ctx context.Context) {
	n, err := bm.stockProvider.LowStockCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to collect low stock count", zap.Error(err))
		return
	}
	bm.RecordLowStockCount(ctx, n)
}

// Stop ends periodic collection. Safe to call more than once.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}
