package trade

import (
	"sort"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/catalog"
	"github.com/royale/pos/internal/domain/shared"
)

// CartLine is one product and a positive quantity
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int64
}

// Cart is an ordered sequence of lines, each with a positive quantity and a
// distinct product. The zero Cart is empty.
type Cart struct {
	lines []CartLine
}

// NewCart validates lines and merges repeated products, keeping the
// position of the first occurrence.
func NewCart(lines ...CartLine) (Cart, error) {
	index := make(map[uuid.UUID]int, len(lines))
	merged := make([]CartLine, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return Cart{}, shared.NewDomainError("INVALID_INPUT", "Cart line is missing a product")
		}
		if line.Quantity <= 0 {
			return Cart{}, shared.NewDomainError("INVALID_INPUT", "Cart quantities must be positive")
		}
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return Cart{lines: merged}, nil
}

// CartFromQuantities converts a product→quantity mapping, dropping entries
// with a quantity of zero or less. Lines are ordered by product id.
func CartFromQuantities(quantities map[uuid.UUID]int64) Cart {
	lines := make([]CartLine, 0, len(quantities))
	for id, qty := range quantities {
		if qty > 0 && id != uuid.Nil {
			lines = append(lines, CartLine{ProductID: id, Quantity: qty})
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID.String() < lines[j].ProductID.String()
	})
	return Cart{lines: lines}
}

// Lines returns a copy of the cart lines
func (c Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty reports whether the cart has no lines
func (c Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Units is the total number of units across lines
func (c Cart) Units() int64 {
	var n int64
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// CartBuilder accumulates quantities while a customer is served. It refuses
// increments that would exceed the shelf quantity, without reporting an
// error, so the till simply does not count past what is in stock.
type CartBuilder struct {
	quantities map[uuid.UUID]int64
	order      []uuid.UUID
}

// NewCartBuilder creates an empty builder
func NewCartBuilder() *CartBuilder {
	return &CartBuilder{quantities: make(map[uuid.UUID]int64)}
}

// Adjust moves the quantity for p by delta and reports whether the change
// was accepted. Decrements floor at zero.
func (b *CartBuilder) Adjust(p *catalog.Product, delta int64) bool {
	current := b.quantities[p.ID]
	next := current + delta
	if next < 0 {
		next = 0
	}
	if !p.CanFulfill(next) {
		return false
	}
	if _, seen := b.quantities[p.ID]; !seen {
		b.order = append(b.order, p.ID)
	}
	b.quantities[p.ID] = next
	return true
}

// Quantity returns the current quantity for a product
func (b *CartBuilder) Quantity(id uuid.UUID) int64 {
	return b.quantities[id]
}

// Cart returns the positive lines in the order products were first added
func (b *CartBuilder) Cart() Cart {
	lines := make([]CartLine, 0, len(b.order))
	for _, id := range b.order {
		if qty := b.quantities[id]; qty > 0 {
			lines = append(lines, CartLine{ProductID: id, Quantity: qty})
		}
	}
	return Cart{lines: lines}
}
