package models

import (
	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/inventory"
)

// StockMovementModel is the persistence model for a stock ledger entry.
type StockMovementModel struct {
	ID              uuid.UUID              `gorm:"column:id;primaryKey"`
	ProductID       uuid.UUID              `gorm:"column:product_id;not null"`
	SaleID          *uuid.UUID             `gorm:"column:sale_id"`
	Type            inventory.MovementType `gorm:"column:type;not null"`
	Delta           int64                  `gorm:"column:delta;not null"`
	BalanceAfter    int64                  `gorm:"column:balance_after;not null"`
	Reason          string                 `gorm:"column:reason;not null"`
	CreatedAtMillis int64                  `gorm:"column:created_at;not null"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement.
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		ID:           m.ID,
		ProductID:    m.ProductID,
		SaleID:       m.SaleID,
		Type:         m.Type,
		Delta:        m.Delta,
		BalanceAfter: m.BalanceAfter,
		Reason:       m.Reason,
		CreatedAt:    FromMillis(m.CreatedAtMillis),
	}
}

// FromDomain populates the persistence model from a domain StockMovement.
func (m *StockMovementModel) FromDomain(sm *inventory.StockMovement) {
	m.ID = sm.ID
	m.ProductID = sm.ProductID
	m.SaleID = sm.SaleID
	m.Type = sm.Type
	m.Delta = sm.Delta
	m.BalanceAfter = sm.BalanceAfter
	m.Reason = sm.Reason
	m.CreatedAtMillis = ToMillis(sm.CreatedAt)
}

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement.
func StockMovementModelFromDomain(sm *inventory.StockMovement) *StockMovementModel {
	m := &StockMovementModel{}
	m.FromDomain(sm)
	return m
}
