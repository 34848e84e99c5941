package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/catalog"
	"github.com/royale/pos/internal/domain/inventory"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/royale/pos/internal/domain/trade"
	"github.com/royale/pos/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Shortfall is a line that sold more than the shelf held when the sale was
// read. The sale still goes through and the balance goes negative.
type Shortfall struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Requested   int64     `json:"requested"`
	Available   int64     `json:"available"`
}

// SaleResult is a recorded sale with the products it touched, re-read after
// their decrement
type SaleResult struct {
	Sale            *trade.Sale
	UpdatedProducts []catalog.Product
	Shortfalls      []Shortfall
}

// UnappliedLine is a sale line whose decrement did not reach the shelf
type UnappliedLine struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	Err         error     `json:"-"`
}

// ReconciliationError reports a persisted sale with unapplied lines. It
// matches shared.ErrReconciliationRequired.
type ReconciliationError struct {
	SaleID uuid.UUID
	Lines  []UnappliedLine
}

func (e *ReconciliationError) Error() string {
	names := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		names[i] = fmt.Sprintf("%s (x%d): %v", l.ProductName, l.Quantity, l.Err)
	}
	return fmt.Sprintf("sale %s recorded but stock not adjusted for %s", e.SaleID, strings.Join(names, "; "))
}

// Unwrap lets errors.Is match shared.ErrReconciliationRequired
func (e *ReconciliationError) Unwrap() error {
	return shared.ErrReconciliationRequired
}

// SaleProcessor turns a cart into a stored sale and the matching stock
// decrements. Calls are serialized.
type SaleProcessor struct {
	mu sync.Mutex

	products        catalog.ProductRepository
	sales           trade.SaleRepository
	ledger          inventory.StockLedger
	events          shared.EventPublisher
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewSaleProcessor creates a new SaleProcessor
func NewSaleProcessor(
	products catalog.ProductRepository,
	sales trade.SaleRepository,
	ledger inventory.StockLedger,
	events shared.EventPublisher,
	logger *zap.Logger,
) *SaleProcessor {
	return &SaleProcessor{
		products: products,
		sales:    sales,
		ledger:   ledger,
		events:   events,
		logger:   logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (p *SaleProcessor) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	p.businessMetrics = bm
}

// RecordSale records a checkout.
//
// An empty cart, or one whose total is zero, fails with shared.ErrEmptyCart.
// A line naming a product that no longer exists fails with
// shared.ErrUnknownProduct. Nothing is written in either case.
//
// Once the sale is stored it is never rolled back. Lines whose decrement
// failed are returned in a *ReconciliationError together with the result.
func (p *SaleProcessor) RecordSale(ctx context.Context, cart trade.Cart, method trade.PaymentMethod) (*SaleResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "record",
		telemetry.SpanAttrPaymentMethod, string(method),
		telemetry.SpanAttrItemCount, len(cart.Lines()),
	)
	defer span.End()

	result, err := p.recordSale(ctx, cart, method)
	if err != nil {
		telemetry.RecordError(span, err)
		if result == nil {
			p.rejected(ctx, err)
		}
	}
	if result != nil {
		telemetry.SetAttributes(span,
			telemetry.SpanAttrSaleID, result.Sale.ID.String(),
			telemetry.SpanAttrTotalAmount, result.Sale.TotalAmount.String(),
		)
	}
	return result, err
}

func (p *SaleProcessor) recordSale(ctx context.Context, cart trade.Cart, method trade.PaymentMethod) (*SaleResult, error) {
	if cart.IsEmpty() {
		return nil, shared.ErrEmptyCart
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown payment method")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	lines := cart.Lines()
	before := make([]*catalog.Product, len(lines))
	for i, line := range lines {
		product, found, err := p.products.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", shared.ErrUnknownProduct, line.ProductID)
		}
		before[i] = product
	}

	items := make([]trade.SaleItem, len(lines))
	var shortfalls []Shortfall
	for i, line := range lines {
		product := before[i]
		item, err := trade.NewSaleItem(product.ID, product.Name, product.SellingPrice, line.Quantity)
		if err != nil {
			return nil, err
		}
		items[i] = item
		if !product.CanFulfill(line.Quantity) {
			shortfalls = append(shortfalls, Shortfall{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.Quantity,
			})
		}
	}

	sale, err := trade.NewSale(items, method)
	if err != nil {
		return nil, err
	}
	if err := p.sales.Append(ctx, sale); err != nil {
		return nil, err
	}

	result := &SaleResult{Sale: sale, Shortfalls: shortfalls}
	events := []shared.DomainEvent{trade.NewSaleRecordedEvent(sale)}
	var unapplied []UnappliedLine

	for i, item := range sale.Items {
		updated, err := p.applyLine(ctx, sale.ID, item)
		if err != nil {
			unapplied = append(unapplied, UnappliedLine{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				Err:         err,
			})
			continue
		}
		if !before[i].IsLowStock() && updated.IsLowStock() {
			events = append(events, catalog.NewStockBelowThresholdEvent(updated))
		}
		result.UpdatedProducts = append(result.UpdatedProducts, *updated)
	}

	for _, s := range shortfalls {
		p.logger.Warn("Sale exceeded shelf stock",
			zap.String("sale_id", sale.ID.String()),
			zap.String("product_id", s.ProductID.String()),
			zap.String("product", s.ProductName),
			zap.Int64("requested", s.Requested),
			zap.Int64("available", s.Available),
		)
	}

	p.publish(ctx, events)
	if p.businessMetrics != nil {
		p.businessMetrics.RecordSale(ctx, string(method), sale.TotalAmount, sale.Units())
		for range events[1:] {
			p.businessMetrics.RecordStockBelowThreshold(ctx)
		}
	}

	p.logger.Info("Sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("total", sale.TotalAmount.String()),
		zap.String("payment_method", string(method)),
		zap.Int("items", len(sale.Items)),
	)

	if len(unapplied) > 0 {
		fields := []zap.Field{
			zap.String("sale_id", sale.ID.String()),
			zap.Int("unapplied_lines", len(unapplied)),
		}
		for _, l := range unapplied {
			fields = append(fields, zap.NamedError(l.ProductID.String(), l.Err))
		}
		p.logger.Error("Sale recorded without full stock adjustment", fields...)
		if p.businessMetrics != nil {
			p.businessMetrics.RecordReconciliationRequired(ctx, len(unapplied))
		}
		return result, &ReconciliationError{SaleID: sale.ID, Lines: unapplied}
	}
	return result, nil
}

// applyLine decrements one product through the ledger and re-reads it
func (p *SaleProcessor) applyLine(ctx context.Context, saleID uuid.UUID, item trade.SaleItem) (*catalog.Product, error) {
	movement, err := inventory.NewSaleMovement(item.ProductID, saleID, inventory.MovementSale, item.Quantity)
	if err != nil {
		return nil, err
	}
	if _, err := p.ledger.Apply(ctx, movement); err != nil {
		return nil, err
	}

	updated, found, err := p.products.FindByID(ctx, item.ProductID)
	if err != nil {
		return nil, fmt.Errorf("re-read product after decrement: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("re-read product after decrement: %w", shared.ErrNotFound)
	}
	return updated, nil
}

func (p *SaleProcessor) publish(ctx context.Context, events []shared.DomainEvent) {
	if p.events == nil {
		return
	}
	if err := p.events.Publish(ctx, events...); err != nil {
		p.logger.Warn("Failed to publish sale events", zap.Error(err))
	}
}

func (p *SaleProcessor) rejected(ctx context.Context, err error) {
	if p.businessMetrics == nil {
		return
	}
	reason := shared.CodeOf(err)
	if reason == "" {
		reason = "STORAGE"
	}
	p.businessMetrics.RecordSaleRejected(ctx, reason)
}

// GetSale returns one sale or shared.ErrNotFound
func (p *SaleProcessor) GetSale(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	sale, found, err := p.sales.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, shared.NewDomainError("NOT_FOUND", "Sale not found")
	}
	return sale, nil
}

// ListSales returns every sale, oldest first
func (p *SaleProcessor) ListSales(ctx context.Context) ([]trade.Sale, error) {
	return p.sales.FindAll(ctx)
}

// IsReconciliationError reports whether err left a sale to repair
func IsReconciliationError(err error) bool {
	var re *ReconciliationError
	return errors.As(err, &re)
}
