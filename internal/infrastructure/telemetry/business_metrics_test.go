package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/royale/pos/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newMeteredBusinessMetrics(t *testing.T, provider telemetry.StockLevelProvider) (*telemetry.BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:           mp.Meter("test"),
		Logger:          zap.NewNop(),
		CollectInterval: 10 * time.Millisecond,
		StockProvider:   provider,
	})
	require.NoError(t, err)
	t.Cleanup(bm.Stop)
	return bm, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{})
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, bm)
}

func TestBusinessMetrics_RecordSale(t *testing.T) {
	bm, reader := newMeteredBusinessMetrics(t, nil)
	ctx := context.Background()

	bm.RecordSale(ctx, "CASH", decimal.NewFromInt(3000), 3)
	bm.RecordSale(ctx, "MOBILE_MONEY", decimal.NewFromInt(12500), 5)

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, metrics["sales_recorded_total"]))
	assert.Equal(t, int64(15500), sumOf(t, metrics["sales_revenue_total"]))

	hist, ok := metrics["sale_units"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestBusinessMetrics_FailureCounters(t *testing.T) {
	bm, reader := newMeteredBusinessMetrics(t, nil)
	ctx := context.Background()

	bm.RecordSaleRejected(ctx, "EMPTY_CART")
	bm.RecordReconciliationRequired(ctx, 2)
	bm.RecordReconciliationRepaired(ctx, 2)
	bm.RecordStockBelowThreshold(ctx)
	bm.RecordAdvisorFailure(ctx, "advice", "error")
	bm.EventDispatched(ctx, "SaleRecorded", nil)
	bm.EventDispatched(ctx, "SaleRecorded", errors.New("boom"))

	metrics := collect(t, reader)
	assert.Equal(t, int64(1), sumOf(t, metrics["sales_rejected_total"]))
	assert.Equal(t, int64(2), sumOf(t, metrics["sale_reconciliation_required"]))
	assert.Equal(t, int64(2), sumOf(t, metrics["sale_reconciliation_repaired_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["stock_below_threshold_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["advisor_failures_total"]))
	assert.Equal(t, int64(2), sumOf(t, metrics["domain_events_dispatched_total"]))
}

type fixedStockProvider struct{ n int64 }

func (p fixedStockProvider) LowStockCount(context.Context) (int64, error) { return p.n, nil }

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	bm, reader := newMeteredBusinessMetrics(t, fixedStockProvider{n: 4})
	bm.StartPeriodicCollection(context.Background())
	bm.StartPeriodicCollection(context.Background())

	require.Eventually(t, func() bool {
		m, ok := collect(t, reader)["low_stock_products"]
		if !ok {
			return false
		}
		gauge, ok := m.Data.(metricdata.Gauge[int64])
		return ok && len(gauge.DataPoints) == 1 && gauge.DataPoints[0].Value == 4
	}, time.Second, 10*time.Millisecond)

	bm.Stop()
	bm.Stop()
}

func TestNewNopBusinessMetrics(t *testing.T) {
	bm := telemetry.NewNopBusinessMetrics()
	bm.RecordSale(context.Background(), "CASH", decimal.NewFromInt(1000), 1)
	bm.StartPeriodicCollection(context.Background())
	bm.Stop()
}
