package inventory

import (
	"context"

	"github.com/google/uuid"
)

// SaleLineKey identifies one product line of one sale
type SaleLineKey struct {
	SaleID    uuid.UUID
	ProductID uuid.UUID
}

// StockLedger changes shelf quantities. Every change is paired with its
// movement in a single transaction, so a sale line has a movement exactly
// when its decrement reached the product.
type StockLedger interface {
	// Apply adds m.Delta to the product's quantity, sets m.BalanceAfter and
	// appends m. Returns shared.ErrNotFound when the product is gone and
	// shared.ErrAlreadyExists when the sale line was already applied.
	Apply(ctx context.Context, m *StockMovement) (int64, error)

	// Record appends m without touching the product, for movements that
	// describe a quantity already stored (opening stock).
	Record(ctx context.Context, m *StockMovement) error
}

// StockMovementRepository reads the stock ledger
type StockMovementRepository interface {

	// FindByProduct returns a product's movements, oldest first
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]StockMovement, error)

	// AppliedSaleLines returns the set of sale lines that already have a
	// SALE or RECONCILIATION movement
	AppliedSaleLines(ctx context.Context) (map[SaleLineKey]bool, error)
}
