package models

import (
	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale domain entity. Items are
// stored as a JSON array of line snapshots.
type SaleModel struct {
	ID              uuid.UUID           `gorm:"column:id;primaryKey"`
	Items           []trade.SaleItem    `gorm:"column:items;serializer:json;not null"`
	TotalAmount     decimal.Decimal     `gorm:"column:total_amount;not null"`
	PaymentMethod   trade.PaymentMethod `gorm:"column:payment_method;not null"`
	TimestampMillis int64               `gorm:"column:timestamp;not null"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale entity.
func (m *SaleModel) ToDomain() *trade.Sale {
	items := m.Items
	if items == nil {
		items = []trade.SaleItem{}
	}
	return &trade.Sale{
		ID:            m.ID,
		Items:         items,
		TotalAmount:   m.TotalAmount,
		PaymentMethod: m.PaymentMethod,
		Timestamp:     FromMillis(m.TimestampMillis),
	}
}

// FromDomain populates the persistence model from a domain Sale entity.
func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.ID = s.ID
	m.Items = s.Items
	m.TotalAmount = s.TotalAmount
	m.PaymentMethod = s.PaymentMethod
	m.TimestampMillis = ToMillis(s.Timestamp)
}

// SaleModelFromDomain creates a new persistence model from a domain Sale entity.
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}
