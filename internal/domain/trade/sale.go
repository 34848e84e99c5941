package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/royale/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SaleItem is a snapshot of a product line at checkout. Its name and price
// are copied from the product and never re-read afterwards.
type SaleItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"price_at_sale"`
	Total       decimal.Decimal `json:"total"`
}

// NewSaleItem snapshots a line and computes its total
func NewSaleItem(productID uuid.UUID, name string, price decimal.Decimal, qty int64) (SaleItem, error) {
	if productID == uuid.Nil {
		return SaleItem{}, shared.NewDomainError("INVALID_INPUT", "Sale item requires a product")
	}
	if qty <= 0 {
		return SaleItem{}, shared.NewDomainError("INVALID_INPUT", "Sale item quantity must be positive")
	}
	if price.IsNegative() {
		return SaleItem{}, shared.NewDomainError("INVALID_INPUT", "Sale item price cannot be negative")
	}
	return SaleItem{
		ProductID:   productID,
		ProductName: name,
		Quantity:    qty,
		PriceAtSale: price,
		Total:       valueobject.NewMoneyUGX(price).MultiplyByInt(qty).Amount(),
	}, nil
}

// Summary renders "<name> (x<qty>)"
func (i SaleItem) Summary() string {
	return fmt.Sprintf("%s (x%d)", i.ProductName, i.Quantity)
}

// Sale is an append-only record of a completed checkout
type Sale struct {
	ID            uuid.UUID
	Items         []SaleItem
	TotalAmount   decimal.Decimal
	PaymentMethod PaymentMethod
	Timestamp     time.Time
}

// NewSale builds a sale from item snapshots. The total is computed once here.
// A sale without items or with a zero total is an empty cart.
func NewSale(items []SaleItem, method PaymentMethod) (*Sale, error) {
	if len(items) == 0 {
		return nil, shared.ErrEmptyCart
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown payment method")
	}

	totals := make([]decimal.Decimal, len(items))
	for i, item := range items {
		totals[i] = item.Total
	}
	total := valueobject.Sum(valueobject.DefaultCurrency, totals...)
	if total.IsZero() {
		return nil, shared.ErrEmptyCart
	}

	snapshot := make([]SaleItem, len(items))
	copy(snapshot, items)

	return &Sale{
		ID:            uuid.New(),
		Items:         snapshot,
		TotalAmount:   total.Amount(),
		PaymentMethod: method,
		Timestamp:     shared.Now(),
	}, nil
}

// ShortID is the first eight characters of the identifier
func (s *Sale) ShortID() string {
	id := s.ID.String()
	if len(id) < 8 {
		return id
	}
	return id[:8]
}

// ItemSummary joins item summaries with "; "
func (s *Sale) ItemSummary() string {
	parts := make([]string, len(s.Items))
	for i, item := range s.Items {
		parts[i] = item.Summary()
	}
	return strings.Join(parts, "; ")
}

// Units is the number of units sold across items
func (s *Sale) Units() int64 {
	var n int64
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

// Total returns the sale total as Money
func (s *Sale) Total() valueobject.Money {
	return valueobject.NewMoneyUGX(s.TotalAmount)
}
