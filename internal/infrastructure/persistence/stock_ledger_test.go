package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/inventory"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormStockLedger(t *testing.T) {
	db := newTestDatabase(t)
	products := NewGormProductRepository(db)
	ledger := NewGormStockLedger(db)
	ctx := context.Background()

	p := newTestProduct(t, "Sugar 1kg", 4500, 10, 3)
	require.NoError(t, products.Save(ctx, p))

	opening, err := inventory.NewStockMovement(p.ID, inventory.MovementOpening, p.Quantity)
	require.NoError(t, err)
	opening.BalanceAfter = p.Quantity
	require.NoError(t, ledger.Record(ctx, opening))

	saleID := uuid.New()

	t.Run("apply decrements and records the balance", func(t *testing.T) {
		m, err := inventory.NewSaleMovement(p.ID, saleID, inventory.MovementSale, 4)
		require.NoError(t, err)

		balance, err := ledger.Apply(ctx, m)
		require.NoError(t, err)
		assert.Equal(t, int64(6), balance)
		assert.Equal(t, int64(6), m.BalanceAfter)

		got, _, err := products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(6), got.Quantity)
	})

	t.Run("same sale line applies once", func(t *testing.T) {
		m, err := inventory.NewSaleMovement(p.ID, saleID, inventory.MovementReconciliation, 4)
		require.NoError(t, err)

		_, err = ledger.Apply(ctx, m)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		got, _, err := products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(6), got.Quantity, "quantity change rolled back with the movement")
	})

	t.Run("oversell goes negative", func(t *testing.T) {
		m, err := inventory.NewSaleMovement(p.ID, uuid.New(), inventory.MovementSale, 9)
		require.NoError(t, err)
		balance, err := ledger.Apply(ctx, m)
		require.NoError(t, err)
		assert.Equal(t, int64(-3), balance)
	})

	t.Run("missing product", func(t *testing.T) {
		m, err := inventory.NewStockMovement(uuid.New(), inventory.MovementAdjustment, 5)
		require.NoError(t, err)
		_, err = ledger.Apply(ctx, m)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("history is oldest first", func(t *testing.T) {
		history, err := ledger.FindByProduct(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, inventory.MovementOpening, history[0].Type)
		assert.Equal(t, int64(10), history[0].Delta)
		assert.Equal(t, int64(-4), history[1].Delta)
		assert.Equal(t, int64(-3), history[2].BalanceAfter)
		require.NotNil(t, history[1].SaleID)
		assert.Equal(t, saleID, *history[1].SaleID)
	})

	t.Run("applied sale lines", func(t *testing.T) {
		applied, err := ledger.AppliedSaleLines(ctx)
		require.NoError(t, err)
		assert.Len(t, applied, 2)
		assert.True(t, applied[inventory.SaleLineKey{SaleID: saleID, ProductID: p.ID}])
	})
}
