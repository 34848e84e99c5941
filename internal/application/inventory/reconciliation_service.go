package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/catalog"
	"github.com/royale/pos/internal/domain/inventory"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/royale/pos/internal/domain/trade"
	"github.com/royale/pos/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RepairFailure is a discrepancy the repair run could not apply
type RepairFailure struct {
	inventory.Discrepancy
	Error string `json:"error"`
}

// ReconciliationReport summarizes a repair run
type ReconciliationReport struct {
	SaleLinesChecked int                     `json:"sale_lines_checked"`
	Discrepancies    []inventory.Discrepancy `json:"discrepancies"`
	Repaired         []inventory.Discrepancy `json:"repaired"`
	// Skipped lines reference products that have since been removed
	Skipped []inventory.Discrepancy `json:"skipped"`
	Failed  []RepairFailure         `json:"failed"`
}

// StockRecount compares a product's stored quantity with its history
type StockRecount struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Stored      int64     `json:"stored"`
	Expected    int64     `json:"expected"`
	Difference  int64     `json:"difference"`
	Movements   int       `json:"movements"`
	Consistent  bool      `json:"consistent"`
}

// ReconciliationService finds and repairs sales whose stock decrement never
// reached the shelf
type ReconciliationService struct {
	sales           trade.SaleRepository
	products        catalog.ProductRepository
	ledger          inventory.StockLedger
	movements       inventory.StockMovementRepository
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	sales trade.SaleRepository,
	products catalog.ProductRepository,
	ledger inventory.StockLedger,
	movements inventory.StockMovementRepository,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		sales:     sales,
		products:  products,
		ledger:    ledger,
		movements: movements,
		logger:    logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *ReconciliationService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Check lists sale lines with no SALE or RECONCILIATION movement, in sale
// order
func (s *ReconciliationService) Check(ctx context.Context) ([]inventory.Discrepancy, error) {
	discrepancies, _, err := s.check(ctx)
	return discrepancies, err
}

func (s *ReconciliationService) check(ctx context.Context) ([]inventory.Discrepancy, int, error) {
	sales, err := s.sales.FindAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	applied, err := s.movements.AppliedSaleLines(ctx)
	if err != nil {
		return nil, 0, err
	}

	discrepancies := make([]inventory.Discrepancy, 0)
	checked := 0
	for _, sale := range sales {
		for _, item := range sale.Items {
			checked++
			if applied[inventory.SaleLineKey{SaleID: sale.ID, ProductID: item.ProductID}] {
				continue
			}
			discrepancies = append(discrepancies, inventory.Discrepancy{
				SaleID:      sale.ID,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
			})
		}
	}
	return discrepancies, checked, nil
}

// Repair applies every missing decrement as a RECONCILIATION movement.
// Running it twice is safe: the second run finds nothing to do.
func (s *ReconciliationService) Repair(ctx context.Context) (*ReconciliationReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "repair")
	defer span.End()

	discrepancies, checked, err := s.check(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	report := &ReconciliationReport{
		SaleLinesChecked: checked,
		Discrepancies:    discrepancies,
		Repaired:         make([]inventory.Discrepancy, 0),
		Skipped:          make([]inventory.Discrepancy, 0),
		Failed:           make([]RepairFailure, 0),
	}

	for _, d := range discrepancies {
		err := s.repairLine(ctx, d)
		switch {
		case err == nil:
			report.Repaired = append(report.Repaired, d)
		case errors.Is(err, shared.ErrNotFound):
			report.Skipped = append(report.Skipped, d)
		case errors.Is(err, shared.ErrAlreadyExists):
			// applied concurrently since the check
		default:
			report.Failed = append(report.Failed, RepairFailure{Discrepancy: d, Error: err.Error()})
			s.logger.Error("Failed to repair sale line",
				zap.String("sale_id", d.SaleID.String()),
				zap.String("product_id", d.ProductID.String()),
				zap.Error(err),
			)
		}
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrDiscrepancies, len(discrepancies))
	if s.businessMetrics != nil && len(report.Repaired) > 0 {
		s.businessMetrics.RecordReconciliationRepaired(ctx, len(report.Repaired))
	}
	s.logger.Info("Reconciliation finished",
		zap.Int("checked", report.SaleLinesChecked),
		zap.Int("discrepancies", len(report.Discrepancies)),
		zap.Int("repaired", len(report.Repaired)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("failed", len(report.Failed)),
	)
	return report, nil
}

func (s *ReconciliationService) repairLine(ctx context.Context, d inventory.Discrepancy) error {
	movement, err := inventory.NewSaleMovement(d.ProductID, d.SaleID, inventory.MovementReconciliation, d.Quantity)
	if err != nil {
		return err
	}
	balance, err := s.ledger.Apply(ctx, movement.WithReason("repair of unapplied sale line"))
	if err != nil {
		return err
	}
	s.logger.Warn("Repaired sale line",
		zap.String("sale_id", d.SaleID.String()),
		zap.String("product_id", d.ProductID.String()),
		zap.Int64("quantity", d.Quantity),
		zap.Int64("balance", balance),
	)
	return nil
}

// RecomputeStock replays a product's movements, counting unapplied sale
// lines as applied, and compares the result with the stored quantity
func (s *ReconciliationService) RecomputeStock(ctx context.Context, productID uuid.UUID) (*StockRecount, error) {
	product, found, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
	}

	movements, err := s.movements.FindByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load movements: %w", err)
	}
	discrepancies, err := s.Check(ctx)
	if err != nil {
		return nil, err
	}
	var missing []inventory.Discrepancy
	for _, d := range discrepancies {
		if d.ProductID == productID {
			missing = append(missing, d)
		}
	}

	expected := inventory.ExpectedBalance(movements, missing)
	return &StockRecount{
		ProductID:   product.ID,
		ProductName: product.Name,
		Stored:      product.Quantity,
		Expected:    expected,
		Difference:  product.Quantity - expected,
		Movements:   len(movements),
		Consistent:  product.Quantity == expected,
	}, nil
}
