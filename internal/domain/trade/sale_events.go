package trade

import (
	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeSale names the sale aggregate in events
const AggregateTypeSale = "Sale"

// EventTypeSaleRecorded is published after a sale is persisted
const EventTypeSaleRecorded = "SaleRecorded"

// SaleRecordedEvent carries the headline figures of a recorded sale
type SaleRecordedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID       `json:"sale_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Units         int64           `json:"units"`
}

// NewSaleRecordedEvent creates a new SaleRecordedEvent
func NewSaleRecordedEvent(s *Sale) *SaleRecordedEvent {
	return &SaleRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleRecorded, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		TotalAmount:     s.TotalAmount,
		PaymentMethod:   s.PaymentMethod,
		Units:           s.Units(),
	}
}
