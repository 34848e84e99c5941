package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/trade"
	"github.com/royale/pos/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM. Queries by time
// use idx_sales_timestamp.
type GormSaleRepository struct {
	db *Database
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *Database) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindAll returns every sale, oldest first
func (r *GormSaleRepository) FindAll(ctx context.Context) ([]trade.Sale, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return r.find(conn.Order("timestamp ASC, id ASC"), "find sales")
}

// FindSince returns sales at or after since, oldest first
func (r *GormSaleRepository) FindSince(ctx context.Context, since time.Time) ([]trade.Sale, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	query := conn.
		Where("timestamp >= ?", models.ToMillis(since)).
		Order("timestamp ASC, id ASC")
	return r.find(query, "find sales since")
}

// FindRecent returns up to limit sales, newest first
func (r *GormSaleRepository) FindRecent(ctx context.Context, limit int) ([]trade.Sale, error) {
	if limit <= 0 {
		return []trade.Sale{}, nil
	}
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	query := conn.
		Order("timestamp DESC, id DESC").
		Limit(limit)
	return r.find(query, "find recent sales")
}

func (r *GormSaleRepository) find(query *gorm.DB, op string) ([]trade.Sale, error) {
	var rows []models.SaleModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(op, err)
	}
	sales := make([]trade.Sale, len(rows))
	for i := range rows {
		sales[i] = *rows[i].ToDomain()
	}
	return sales, nil
}

// FindByID finds a sale by its ID
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, bool, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, false, err
	}
	var model models.SaleModel
	if err := conn.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, translateError("find sale", err)
	}
	return model.ToDomain(), true, nil
}

// Append inserts a new sale. A sale whose ID is already stored is rejected
// with shared.ErrAlreadyExists and the stored record is left untouched.
func (r *GormSaleRepository) Append(ctx context.Context, sale *trade.Sale) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return err
	}
	model := models.SaleModelFromDomain(sale)
	return translateError("append sale", conn.Create(model).Error)
}

// Ensure GormSaleRepository implements SaleRepository
var _ trade.SaleRepository = (*GormSaleRepository)(nil)
