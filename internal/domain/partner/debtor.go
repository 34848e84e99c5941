package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Debtor is a customer who took goods on credit
type Debtor struct {
	shared.BaseEntity
	Name   string
	Phone  string
	Amount decimal.Decimal
}

// NewDebtor creates a debtor with an opening balance
func NewDebtor(name, phone string, amount decimal.Decimal) (*Debtor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Debtor name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Debtor name cannot exceed 100 characters")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Opening balance cannot be negative")
	}
	return &Debtor{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Phone:      strings.TrimSpace(phone),
		Amount:     amount,
	}, nil
}

// AddCharge increases the outstanding balance
func (d *Debtor) AddCharge(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Charge must be positive")
	}
	d.Amount = d.Amount.Add(amount)
	d.Touch()
	return nil
}

// RecordPayment reduces the outstanding balance. Paying more than is owed
// is rejected.
func (d *Debtor) RecordPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Payment must be positive")
	}
	if amount.GreaterThan(d.Amount) {
		return shared.NewDomainError("INSUFFICIENT_BALANCE", "Payment exceeds the outstanding balance")
	}
	d.Amount = d.Amount.Sub(amount)
	d.Touch()
	return nil
}

// IsSettled reports whether nothing is owed
func (d *Debtor) IsSettled() bool {
	return d.Amount.IsZero()
}

// DebtorRepository defines the interface for debtor persistence
type DebtorRepository interface {
	FindAll(ctx context.Context) ([]Debtor, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Debtor, bool, error)
	Save(ctx context.Context, d *Debtor) error
	Delete(ctx context.Context, id uuid.UUID) error
}
