package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// CreateDebtorRequest represents a request to record a new debtor
type CreateDebtorRequest struct {
	Name   string           `json:"name" binding:"required,min=1,max=100"`
	Phone  string           `json:"phone" binding:"max=30"`
	Amount *decimal.Decimal `json:"amount"`
}

// BalanceChangeRequest carries a charge or a payment
type BalanceChangeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// DebtorResponse represents a debtor in API responses
type DebtorResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Settled   bool            `json:"settled"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DebtorListResponse lists debtors with the total owed
type DebtorListResponse struct {
	Debtors     []DebtorResponse `json:"debtors"`
	Outstanding decimal.Decimal  `json:"outstanding"`
}

// ToDebtorResponse converts a domain Debtor to DebtorResponse
func ToDebtorResponse(d *partner.Debtor) DebtorResponse {
	return DebtorResponse{
		ID:        d.ID,
		Name:      d.Name,
		Phone:     d.Phone,
		Amount:    d.Amount,
		Settled:   d.IsSettled(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
