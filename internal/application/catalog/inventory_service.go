package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/catalog"
	"github.com/royale/pos/internal/domain/inventory"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Defaults fill form fields the shopkeeper left blank
type Defaults struct {
	LowStockThreshold int64
	CostRatio         decimal.Decimal
}

// DefaultDefaults matches a new shop: threshold 5, cost at 80% of price
func DefaultDefaults() Defaults {
	return Defaults{LowStockThreshold: 5, CostRatio: catalog.DefaultCostRatio}
}

// InventoryService manages the product catalog and manual stock changes
type InventoryService struct {
	products catalog.ProductRepository
	ledger   inventory.StockLedger
	events   shared.EventPublisher
	logger   *zap.Logger
	defaults Defaults
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	products catalog.ProductRepository,
	ledger inventory.StockLedger,
	events shared.EventPublisher,
	logger *zap.Logger,
	defaults Defaults,
) *InventoryService {
	return &InventoryService{
		products: products,
		ledger:   ledger,
		events:   events,
		logger:   logger,
		defaults: defaults,
	}
}

// AddProduct validates form and stores a new product with its opening stock
func (s *InventoryService) AddProduct(ctx context.Context, form ProductForm) (*ProductResponse, error) {
	details, qty, err := s.resolveForm(form, nil)
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(details, qty)
	if err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	opening, err := inventory.NewStockMovement(product.ID, inventory.MovementOpening, qty)
	if err != nil {
		return nil, err
	}
	opening.BalanceAfter = qty
	if err := s.ledger.Record(ctx, opening); err != nil {
		// the product exists; reconciliation treats a missing opening as zero
		s.logger.Error("Failed to record opening stock",
			zap.String("product_id", product.ID.String()),
			zap.Int64("quantity", qty),
			zap.Error(err),
		)
	}

	s.publish(ctx, product)
	s.logger.Info("Product added",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
		zap.Int64("quantity", product.Quantity),
	)

	resp := ToProductResponse(product)
	return &resp, nil
}

// UpdateProduct replaces the editable fields of a product. The quantity in
// the form is ignored; use AdjustStock. A blank cost keeps the current cost.
// Stock is never written here, so sales made meanwhile are kept.
func (s *InventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, form ProductForm) (*ProductResponse, error) {
	product, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}

	form.Quantity = ""
	details, _, err := s.resolveForm(form, product)
	if err != nil {
		return nil, err
	}
	if err := product.Update(details); err != nil {
		return nil, err
	}
	if err := s.products.UpdateDetails(ctx, product); err != nil {
		return nil, err
	}

	current, found, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found {
		product.Quantity = current.Quantity
	}
	s.publish(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// RemoveProduct deletes a product. Past sales keep their snapshots and
// removing an unknown product succeeds.
func (s *InventoryService) RemoveProduct(ctx context.Context, id uuid.UUID) error {
	product, found, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	if found {
		s.publishEvents(ctx, catalog.NewProductDeletedEvent(product))
		s.logger.Info("Product removed",
			zap.String("product_id", id.String()),
			zap.String("name", product.Name),
		)
	}
	return nil
}

// GetProduct returns one product or shared.ErrNotFound
func (s *InventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// ListProducts returns products ordered by name, filtered by a
// case-insensitive name search when search is not blank
func (s *InventoryService) ListProducts(ctx context.Context, search string) ([]ProductResponse, error) {
	var (
		products []catalog.Product
		err      error
	)
	if term := strings.TrimSpace(search); term != "" {
		products, err = s.products.Search(ctx, term)
	} else {
		products, err = s.products.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// LowStockProducts returns products at or below their threshold
func (s *InventoryService) LowStockProducts(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.products.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// LowStockCount returns how many products are at or below their threshold
func (s *InventoryService) LowStockCount(ctx context.Context) (int64, error) {
	products, err := s.products.FindLowStock(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(products)), nil
}

// AdjustStock moves a product's quantity by delta and records the reason
func (s *InventoryService) AdjustStock(ctx context.Context, id uuid.UUID, delta int64, reason string) (*ProductResponse, error) {
	if delta == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Stock adjustment cannot be zero")
	}

	product, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}

	movement, err := inventory.NewStockMovement(id, inventory.MovementAdjustment, delta)
	if err != nil {
		return nil, err
	}
	balance, err := s.ledger.Apply(ctx, movement.WithReason(strings.TrimSpace(reason)))
	if err != nil {
		return nil, fmt.Errorf("adjust stock of %s: %w", id, err)
	}

	product.ClearDomainEvents()
	product.ApplyStockDelta(balance - product.Quantity)
	s.publish(ctx, product)

	s.logger.Info("Stock adjusted",
		zap.String("product_id", id.String()),
		zap.Int64("delta", delta),
		zap.Int64("balance", balance),
		zap.String("reason", movement.Reason),
	)

	resp := ToProductResponse(product)
	return &resp, nil
}

// resolveForm validates form and fills blank defaults. A blank cost comes
// from existing when given, otherwise from the default ratio.
func (s *InventoryService) resolveForm(form ProductForm, existing *catalog.Product) (catalog.ProductDetails, int64, error) {
	result := ValidateProductForm(form)
	if !result.Valid {
		return catalog.ProductDetails{}, 0, &ValidationError{Fields: result.Errors}
	}

	details := result.Input.Details
	if !result.Input.ThresholdSet {
		details.LowStockThreshold = s.defaults.LowStockThreshold
	}
	switch {
	case details.CostPrice != nil:
	case existing != nil:
		cost := existing.CostPrice
		details.CostPrice = &cost
	case !s.defaults.CostRatio.IsZero():
		cost := details.SellingPrice.Mul(s.defaults.CostRatio)
		details.CostPrice = &cost
	}
	return details, result.Input.OpeningQuantity, nil
}

func (s *InventoryService) mustFind(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, found, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
	}
	return product, nil
}

func (s *InventoryService) publish(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	product.ClearDomainEvents()
	s.publishEvents(ctx, events...)
}

func (s *InventoryService) publishEvents(ctx context.Context, events ...shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish product events", zap.Error(err))
	}
}
