package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saleAt(t *testing.T, ts time.Time, method trade.PaymentMethod, items ...trade.SaleItem) trade.Sale {
	t.Helper()
	s, err := trade.NewSale(items, method)
	require.NoError(t, err)
	s.Timestamp = ts
	return *s
}

func item(t *testing.T, id uuid.UUID, name string, price, qty int64) trade.SaleItem {
	t.Helper()
	i, err := trade.NewSaleItem(id, name, decimal.NewFromInt(price), qty)
	require.NoError(t, err)
	return i
}

func TestAggregateDaily(t *testing.T) {
	kampala, err := time.LoadLocation("Africa/Kampala")
	require.NoError(t, err)
	milk := uuid.New()

	sales := []trade.Sale{
		// 22:30 UTC is 01:30 the next day in Kampala
		saleAt(t, time.Date(2026, 3, 1, 22, 30, 0, 0, time.UTC), trade.PaymentMethodCash, item(t, milk, "Milk", 1000, 2)),
		saleAt(t, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), trade.PaymentMethodCash, item(t, milk, "Milk", 1000, 1)),
		saleAt(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), trade.PaymentMethodMobileMoney, item(t, milk, "Milk", 1000, 3)),
	}

	days := AggregateDaily(sales, kampala)
	require.Len(t, days, 2)

	assert.Equal(t, "2026-03-01", days[0].Date)
	assert.Equal(t, int64(2), days[0].SaleCount)
	assert.Equal(t, int64(4), days[0].ItemsSold)
	assert.True(t, days[0].Revenue.Equal(decimal.NewFromInt(4000)))
	assert.True(t, days[0].RevenueByMethod[trade.PaymentMethodMobileMoney].Equal(decimal.NewFromInt(3000)))

	assert.Equal(t, "2026-03-02", days[1].Date)
	assert.True(t, days[1].Revenue.Equal(decimal.NewFromInt(2000)))

	var sum decimal.Decimal
	for _, d := range days {
		sum = sum.Add(d.Revenue)
	}
	assert.True(t, sum.Equal(GrandTotal(sales)))
}

func TestRankProducts(t *testing.T) {
	milk, bread := uuid.New(), uuid.New()
	now := time.Now()
	sales := []trade.Sale{
		saleAt(t, now, trade.PaymentMethodCash, item(t, milk, "Milk", 1000, 2), item(t, bread, "Bread", 3000, 1)),
		saleAt(t, now, trade.PaymentMethodCash, item(t, bread, "Bread", 3000, 2)),
	}

	ranked := RankProducts(sales, 0)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Bread", ranked[0].ProductName)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, int64(3), ranked[0].Quantity)
	assert.True(t, ranked[0].Revenue.Equal(decimal.NewFromInt(9000)))

	assert.Len(t, RankProducts(sales, 1), 1)
	assert.Empty(t, RankProducts(nil, 5))
}
