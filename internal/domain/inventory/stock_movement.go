package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/shared"
)

// MovementType classifies a change in a product's shelf quantity
type MovementType string

const (
	MovementOpening        MovementType = "OPENING"
	MovementSale           MovementType = "SALE"
	MovementAdjustment     MovementType = "ADJUSTMENT"
	MovementReconciliation MovementType = "RECONCILIATION"
)

// IsValid checks if the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementOpening, MovementSale, MovementAdjustment, MovementReconciliation:
		return true
	}
	return false
}

// StockMovement is one entry of the stock ledger. Sale and reconciliation
// movements carry the sale they applied; a sale applies to a product at
// most once.
type StockMovement struct {
	ID           uuid.UUID
	ProductID    uuid.UUID
	SaleID       *uuid.UUID
	Type         MovementType
	Delta        int64
	BalanceAfter int64
	Reason       string
	CreatedAt    time.Time
}

// NewStockMovement describes a delta to a product's quantity. BalanceAfter
// is filled in when the movement is applied.
func NewStockMovement(productID uuid.UUID, t MovementType, delta int64) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Stock movement requires a product")
	}
	if !t.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown stock movement type")
	}
	return &StockMovement{
		ID:        uuid.New(),
		ProductID: productID,
		Type:      t,
		Delta:     delta,
		CreatedAt: shared.Now(),
	}, nil
}

// NewSaleMovement records the decrement applied for one sale line.
// Reconciliation repairs use MovementReconciliation with the same sale.
func NewSaleMovement(productID, saleID uuid.UUID, t MovementType, qty int64) (*StockMovement, error) {
	if t != MovementSale && t != MovementReconciliation {
		return nil, shared.NewDomainError("INVALID_INPUT", "Sale movements must be SALE or RECONCILIATION")
	}
	if qty <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Sold quantity must be positive")
	}
	m, err := NewStockMovement(productID, t, -qty)
	if err != nil {
		return nil, err
	}
	m.SaleID = &saleID
	return m, nil
}

// WithReason attaches a free-text reason
func (m *StockMovement) WithReason(reason string) *StockMovement {
	m.Reason = reason
	return m
}

// AppliesSale reports whether the movement accounts for a sale line
func (m *StockMovement) AppliesSale() bool {
	return m.SaleID != nil && (m.Type == MovementSale || m.Type == MovementReconciliation)
}
