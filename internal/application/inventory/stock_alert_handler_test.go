package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/royale/pos/internal/domain/catalog"
	"github.com/royale/pos/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type captureNotifier struct {
	alerts []StockAlert
	err    error
}

func (n *captureNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.alerts = append(n.alerts, alert)
	return n.err
}

func lowStockEvent(t *testing.T, qty int64) *catalog.StockBelowThresholdEvent {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductDetails{
		Name:              "Rice 1kg",
		SellingPrice:      decimal.NewFromInt(4500),
		LowStockThreshold: 5,
	}, qty)
	require.NoError(t, err)
	return catalog.NewStockBelowThresholdEvent(p)
}

func TestStockAlertHandler_EventTypes(t *testing.T) {
	h := NewStockAlertHandler(zap.NewNop())
	assert.Equal(t, []string{catalog.EventTypeStockBelowThreshold}, h.EventTypes())
}

func TestStockAlertHandler_AlertTypes(t *testing.T) {
	tests := []struct {
		name string
		qty  int64
		want string
	}{
		{name: "low", qty: 3, want: AlertTypeLowStock},
		{name: "empty", qty: 0, want: AlertTypeOutOfStock},
		{name: "oversold", qty: -2, want: AlertTypeOutOfStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &captureNotifier{}
			h := NewStockAlertHandler(zap.NewNop()).WithNotifier(notifier)

			require.NoError(t, h.Handle(context.Background(), lowStockEvent(t, tt.qty)))
			require.Len(t, notifier.alerts, 1)
			assert.Equal(t, tt.want, notifier.alerts[0].AlertType)
			assert.Equal(t, "Rice 1kg", notifier.alerts[0].ProductName)
			assert.Equal(t, tt.qty, notifier.alerts[0].CurrentQuantity)
			assert.Equal(t, int64(5), notifier.alerts[0].Threshold)
		})
	}
}

func TestStockAlertHandler_NotifierFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	notifier := &captureNotifier{err: errors.New("sms gateway down")}
	h := NewStockAlertHandler(zap.New(core)).WithNotifier(notifier)

	assert.NoError(t, h.Handle(context.Background(), lowStockEvent(t, 1)))
	assert.Equal(t, 1, logs.FilterMessage("Failed to send stock alert").Len())
}

func TestStockAlertHandler_RejectsOtherEvents(t *testing.T) {
	h := NewStockAlertHandler(zap.NewNop())
	item, err := trade.NewSaleItem(lowStockEvent(t, 1).ProductID, "Rice", decimal.NewFromInt(100), 1)
	require.NoError(t, err)
	sale, err := trade.NewSale([]trade.SaleItem{item}, trade.PaymentMethodCash)
	require.NoError(t, err)

	assert.Error(t, h.Handle(context.Background(), trade.NewSaleRecordedEvent(sale)))
}

func TestLoggingStockAlertNotifier(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	n := NewLoggingStockAlertNotifier(zap.New(core))

	require.NoError(t, n.SendAlert(context.Background(), StockAlert{ProductName: "Rice", AlertType: AlertTypeLowStock}))
	entries := logs.FilterMessage("STOCK ALERT").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "low_stock", entries[0].ContextMap()["type"])
}
