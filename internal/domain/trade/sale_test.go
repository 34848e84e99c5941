package trade

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustItem(t *testing.T, name string, price, qty int64) SaleItem {
	t.Helper()
	item, err := NewSaleItem(uuid.New(), name, decimal.NewFromInt(price), qty)
	require.NoError(t, err)
	return item
}

func TestNewSaleItem(t *testing.T) {
	item := mustItem(t, "Milk 500ml", 1000, 3)
	assert.True(t, item.Total.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, "Milk 500ml (x3)", item.Summary())

	_, err := NewSaleItem(uuid.New(), "x", decimal.NewFromInt(1), 0)
	assert.Error(t, err)
	_, err = NewSaleItem(uuid.Nil, "x", decimal.NewFromInt(1), 1)
	assert.Error(t, err)
}

func TestNewSale(t *testing.T) {
	t.Run("total is the sum of line totals", func(t *testing.T) {
		sale, err := NewSale([]SaleItem{
			mustItem(t, "Milk", 1000, 3),
			mustItem(t, "Bread", 2500, 2),
		}, PaymentMethodMobileMoney)
		require.NoError(t, err)

		assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(8000)))
		assert.Equal(t, "Milk (x3); Bread (x2)", sale.ItemSummary())
		assert.Equal(t, int64(5), sale.Units())
		assert.Len(t, sale.ShortID(), 8)
		assert.Equal(t, "UGX 8000", sale.Total().String())
	})

	t.Run("empty items", func(t *testing.T) {
		_, err := NewSale(nil, PaymentMethodCash)
		assert.True(t, errors.Is(err, shared.ErrEmptyCart))
	})

	t.Run("zero total", func(t *testing.T) {
		_, err := NewSale([]SaleItem{mustItem(t, "Free sample", 0, 1)}, PaymentMethodCash)
		assert.True(t, errors.Is(err, shared.ErrEmptyCart))
	})

	t.Run("invalid payment method", func(t *testing.T) {
		_, err := NewSale([]SaleItem{mustItem(t, "Milk", 1000, 1)}, PaymentMethod("BARTER"))
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("items are copied", func(t *testing.T) {
		items := []SaleItem{mustItem(t, "Milk", 1000, 1)}
		sale, err := NewSale(items, PaymentMethodCash)
		require.NoError(t, err)
		items[0].ProductName = "changed"
		assert.Equal(t, "Milk", sale.Items[0].ProductName)
	})
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod(" mobile_money ")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodMobileMoney, m)

	_, err = ParsePaymentMethod("cheque")
	assert.Error(t, err)
}
