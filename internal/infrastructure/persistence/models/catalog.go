package models

import (
	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/catalog"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	ID                uuid.UUID       `gorm:"column:id;primaryKey"`
	Name              string          `gorm:"column:name;not null"`
	Category          string          `gorm:"column:category;not null"`
	CostPrice         decimal.Decimal `gorm:"column:cost_price;not null"`
	SellingPrice      decimal.Decimal `gorm:"column:selling_price;not null"`
	Quantity          int64           `gorm:"column:quantity;not null"`
	LowStockThreshold int64           `gorm:"column:low_stock_threshold;not null"`
	UpdatedAtMillis   int64           `gorm:"column:updated_at;not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				UpdatedAt: FromMillis(m.UpdatedAtMillis),
			},
		},
		Name:              m.Name,
		Category:          m.Category,
		CostPrice:         m.CostPrice,
		SellingPrice:      m.SellingPrice,
		Quantity:          m.Quantity,
		LowStockThreshold: m.LowStockThreshold,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.ID = p.ID
	m.Name = p.Name
	m.Category = p.Category
	m.CostPrice = p.CostPrice
	m.SellingPrice = p.SellingPrice
	m.Quantity = p.Quantity
	m.LowStockThreshold = p.LowStockThreshold
	m.UpdatedAtMillis = ToMillis(p.UpdatedAt)
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
