package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/inventory"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/royale/pos/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockLedger implements StockLedger and StockMovementRepository.
// Each Apply is one transaction: the quantity update, the balance read and
// the movement insert commit or roll back together.
type GormStockLedger struct {
	db *Database
}

// NewGormStockLedger creates a new GormStockLedger
func NewGormStockLedger(db *Database) *GormStockLedger {
	return &GormStockLedger{db: db}
}

// Apply adds m.Delta to the product quantity and appends m
func (l *GormStockLedger) Apply(ctx context.Context, m *inventory.StockMovement) (int64, error) {
	var balance int64
	err := l.db.Transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.ProductModel{}).
			Where("id = ?", m.ProductID).
			UpdateColumns(map[string]any{
				"quantity":   gorm.Expr("quantity + ?", m.Delta),
				"updated_at": models.ToMillis(m.CreatedAt),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		var balances []int64
		if err := tx.Model(&models.ProductModel{}).
			Where("id = ?", m.ProductID).
			Pluck("quantity", &balances).Error; err != nil {
			return err
		}
		if len(balances) == 0 {
			return shared.ErrNotFound
		}
		balance = balances[0]

		m.BalanceAfter = balance
		return tx.Create(models.StockMovementModelFromDomain(m)).Error
	})
	if err != nil {
		return 0, translateError(fmt.Sprintf("apply %s movement", m.Type), err)
	}
	return balance, nil
}

// Record appends m as is. BalanceAfter must already be set.
func (l *GormStockLedger) Record(ctx context.Context, m *inventory.StockMovement) error {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return err
	}
	err = conn.Create(models.StockMovementModelFromDomain(m)).Error
	return translateError(fmt.Sprintf("record %s movement", m.Type), err)
}

// FindByProduct returns a product's movements, oldest first
func (l *GormStockLedger) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockMovement, error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	var rows []models.StockMovementModel
	if err := conn.
		Where("product_id = ?", productID).
		Order("created_at ASC, rowid ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError("find stock movements", err)
	}
	movements := make([]inventory.StockMovement, len(rows))
	for i := range rows {
		movements[i] = *rows[i].ToDomain()
	}
	return movements, nil
}

// AppliedSaleLines returns every sale line that already has a movement
func (l *GormStockLedger) AppliedSaleLines(ctx context.Context) (map[inventory.SaleLineKey]bool, error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	var rows []models.StockMovementModel
	if err := conn.
		Select("sale_id", "product_id").
		Where("sale_id IS NOT NULL AND type IN ?", []inventory.MovementType{
			inventory.MovementSale,
			inventory.MovementReconciliation,
		}).
		Find(&rows).Error; err != nil {
		return nil, translateError("find applied sale lines", err)
	}
	applied := make(map[inventory.SaleLineKey]bool, len(rows))
	for _, row := range rows {
		applied[inventory.SaleLineKey{SaleID: *row.SaleID, ProductID: row.ProductID}] = true
	}
	return applied, nil
}

// Ensure GormStockLedger implements the ledger interfaces
var (
	_ inventory.StockLedger             = (*GormStockLedger)(nil)
	_ inventory.StockMovementRepository = (*GormStockLedger)(nil)
)
