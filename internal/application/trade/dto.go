package trade

import (
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/royale/pos/internal/application/catalog"
	"github.com/royale/pos/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SaleLineRequest is one cart line in a checkout request
type SaleLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"gte=0"`
}

// RecordSaleRequest is a checkout. Lines with a zero quantity are dropped.
type RecordSaleRequest struct {
	Items         []SaleLineRequest `json:"items" binding:"dive"`
	PaymentMethod string            `json:"payment_method" binding:"required,oneof=CASH MOBILE_MONEY CREDIT"`
}

// Cart converts the request lines, dropping non-positive quantities and
// merging repeated products
func (r RecordSaleRequest) Cart() (trade.Cart, error) {
	lines := make([]trade.CartLine, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Quantity > 0 {
			lines = append(lines, trade.CartLine{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	}
	return trade.NewCart(lines...)
}

// SaleItemResponse is one line of a sale
type SaleItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"price_at_sale"`
	Total       decimal.Decimal `json:"total"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID            uuid.UUID          `json:"id"`
	ShortID       string             `json:"short_id"`
	Items         []SaleItemResponse `json:"items"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaymentMethod string             `json:"payment_method"`
	Timestamp     time.Time          `json:"timestamp"`
}

// ToSaleResponse converts a domain Sale to SaleResponse
func ToSaleResponse(s *trade.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = SaleItemResponse(item)
	}
	return SaleResponse{
		ID:            s.ID,
		ShortID:       s.ShortID(),
		Items:         items,
		TotalAmount:   s.TotalAmount,
		PaymentMethod: string(s.PaymentMethod),
		Timestamp:     s.Timestamp,
	}
}

// ToSaleResponses converts a slice of sales
func ToSaleResponses(sales []trade.Sale) []SaleResponse {
	out := make([]SaleResponse, len(sales))
	for i := range sales {
		out[i] = ToSaleResponse(&sales[i])
	}
	return out
}

// SaleResultResponse is the checkout outcome
type SaleResultResponse struct {
	Sale            SaleResponse                 `json:"sale"`
	UpdatedProducts []catalogapp.ProductResponse `json:"updated_products"`
	Shortfalls      []Shortfall                  `json:"shortfalls,omitempty"`
}

// ToSaleResultResponse converts a SaleResult
func ToSaleResultResponse(r *SaleResult) SaleResultResponse {
	return SaleResultResponse{
		Sale:            ToSaleResponse(r.Sale),
		UpdatedProducts: catalogapp.ToProductResponses(r.UpdatedProducts),
		Shortfalls:      r.Shortfalls,
	}
}
