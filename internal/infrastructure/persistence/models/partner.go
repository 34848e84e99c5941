package models

import (
	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/partner"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DebtorModel is the persistence model for the Debtor domain entity.
type DebtorModel struct {
	ID                uuid.UUID       `gorm:"column:id;primaryKey"`
	Name              string          `gorm:"column:name;not null"`
	Phone             string          `gorm:"column:phone;not null"`
	Amount            decimal.Decimal `gorm:"column:amount;not null"`
	LastUpdatedMillis int64           `gorm:"column:last_updated;not null"`
}

// TableName returns the table name for GORM
func (DebtorModel) TableName() string {
	return "debtors"
}

// ToDomain converts the persistence model to a domain Debtor entity.
func (m *DebtorModel) ToDomain() *partner.Debtor {
	return &partner.Debtor{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			UpdatedAt: FromMillis(m.LastUpdatedMillis),
		},
		Name:   m.Name,
		Phone:  m.Phone,
		Amount: m.Amount,
	}
}

// FromDomain populates the persistence model from a domain Debtor entity.
func (m *DebtorModel) FromDomain(d *partner.Debtor) {
	m.ID = d.ID
	m.Name = d.Name
	m.Phone = d.Phone
	m.Amount = d.Amount
	m.LastUpdatedMillis = ToMillis(d.UpdatedAt)
}

// DebtorModelFromDomain creates a new persistence model from a domain Debtor entity.
func DebtorModelFromDomain(d *partner.Debtor) *DebtorModel {
	m := &DebtorModel{}
	m.FromDomain(d)
	return m
}
