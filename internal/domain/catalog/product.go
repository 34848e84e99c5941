package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned when a product is entered without one.
const DefaultCategory = "GENERAL"

// DefaultCostRatio derives a cost price from the selling price when the
// shopkeeper leaves cost blank.
var DefaultCostRatio = decimal.NewFromFloat(0.8)

// Product is a stock-keeping item on the shop shelf.
// It is the aggregate root for stock level changes.
type Product struct {
	shared.BaseAggregateRoot
	Name              string
	Category          string
	CostPrice         decimal.Decimal
	SellingPrice      decimal.Decimal
	Quantity          int64
	LowStockThreshold int64
}

// ProductDetails are the editable fields of a product.
// A nil CostPrice is derived from SellingPrice using DefaultCostRatio.
type ProductDetails struct {
	Name              string
	Category          string
	CostPrice         *decimal.Decimal
	SellingPrice      decimal.Decimal
	LowStockThreshold int64
}

// NewProduct creates a product with a fresh identifier and opening stock.
func NewProduct(details ProductDetails, openingQty int64) (*Product, error) {
	if openingQty < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Opening quantity cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Quantity:          openingQty,
	}
	if err := product.apply(details); err != nil {
		return nil, err
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))
	return product, nil
}

// Update replaces the editable fields. Quantity is only changed through
// stock adjustments.
func (p *Product) Update(details ProductDetails) error {
	if err := p.apply(details); err != nil {
		return err
	}
	p.Touch()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

func (p *Product) apply(details ProductDetails) error {
	name := strings.TrimSpace(details.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_INPUT", "Product name cannot exceed 200 characters")
	}
	if details.SellingPrice.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Selling price cannot be negative")
	}
	if !details.SellingPrice.IsInteger() {
		return shared.NewDomainError("INVALID_INPUT", "Selling price must be whole shillings")
	}
	if details.LowStockThreshold < 0 {
		return shared.NewDomainError("INVALID_INPUT", "Low stock threshold cannot be negative")
	}

	cost := details.SellingPrice.Mul(DefaultCostRatio)
	if details.CostPrice != nil {
		if details.CostPrice.IsNegative() {
			return shared.NewDomainError("INVALID_INPUT", "Cost price cannot be negative")
		}
		cost = *details.CostPrice
	}

	category := strings.TrimSpace(details.Category)
	if category == "" {
		category = DefaultCategory
	}

	p.Name = name
	p.Category = category
	p.CostPrice = cost
	p.SellingPrice = details.SellingPrice
	p.LowStockThreshold = details.LowStockThreshold
	return nil
}

// IsLowStock reports whether the quantity has fallen to or below the threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

// CanFulfill reports whether qty units can be taken from the shelf.
func (p *Product) CanFulfill(qty int64) bool {
	return qty >= 0 && qty <= p.Quantity
}

// ApplyStockDelta moves the quantity by delta. It does not clamp at zero;
// callers that oversell see a negative balance. Crossing into low stock
// raises StockBelowThreshold.
func (p *Product) ApplyStockDelta(delta int64) {
	wasLow := p.IsLowStock()
	p.Quantity += delta
	p.Touch()
	if !wasLow && p.IsLowStock() {
		p.AddDomainEvent(NewStockBelowThresholdEvent(p))
	}
}

// StockValue returns quantity × cost and quantity × selling price.
// Negative balances contribute nothing.
func (p *Product) StockValue() (atCost, atRetail decimal.Decimal) {
	if p.Quantity <= 0 {
		return decimal.Zero, decimal.Zero
	}
	q := decimal.NewFromInt(p.Quantity)
	return p.CostPrice.Mul(q), p.SellingPrice.Mul(q)
}

// Margin is the selling price minus cost.
func (p *Product) Margin() decimal.Decimal {
	return p.SellingPrice.Sub(p.CostPrice)
}

// IDs returns the identifiers of the given products in order.
func IDs(products []Product) []uuid.UUID {
	ids := make([]uuid.UUID, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	return ids
}
