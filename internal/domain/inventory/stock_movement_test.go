package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSaleMovement(t *testing.T) {
	productID, saleID := uuid.New(), uuid.New()

	m, err := NewSaleMovement(productID, saleID, MovementSale, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), m.Delta)
	assert.Equal(t, saleID, *m.SaleID)
	assert.True(t, m.AppliesSale())

	_, err = NewSaleMovement(productID, saleID, MovementAdjustment, 3)
	assert.Error(t, err)
	_, err = NewSaleMovement(productID, saleID, MovementSale, 0)
	assert.Error(t, err)
}

func TestNewStockMovement(t *testing.T) {
	m, err := NewStockMovement(uuid.New(), MovementOpening, 10)
	require.NoError(t, err)
	assert.False(t, m.AppliesSale())
	assert.Equal(t, "restock", m.WithReason("restock").Reason)

	_, err = NewStockMovement(uuid.Nil, MovementOpening, 1)
	assert.Error(t, err)
	_, err = NewStockMovement(uuid.New(), MovementType("LOST"), 1)
	assert.Error(t, err)
}

func TestExpectedBalance(t *testing.T) {
	productID := uuid.New()
	opening, _ := NewStockMovement(productID, MovementOpening, 10)
	sale, _ := NewSaleMovement(productID, uuid.New(), MovementSale, 3)
	restock, _ := NewStockMovement(productID, MovementAdjustment, 5)

	movements := []StockMovement{*opening, *sale, *restock}
	assert.Equal(t, int64(12), ExpectedBalance(movements, nil))
	assert.Equal(t, int64(10), ExpectedBalance(movements, []Discrepancy{{ProductID: productID, Quantity: 2}}))
}
