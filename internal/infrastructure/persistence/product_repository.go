package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/catalog"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/royale/pos/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const productOrder = "name COLLATE NOCASE ASC, id ASC"

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *Database
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *Database) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindAll returns every product ordered by name
func (r *GormProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return r.find(conn.Order(productOrder), "find products")
}

// Search returns products whose name contains term. SQLite LIKE folds ASCII case.
func (r *GormProductRepository) Search(ctx context.Context, term string) ([]catalog.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return r.FindAll(ctx)
	}
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	query := conn.
		Where(`name LIKE ? ESCAPE '\'`, "%"+escapeLike(term)+"%").
		Order(productOrder)
	return r.find(query, "search products")
}

// FindLowStock returns products at or below their threshold
func (r *GormProductRepository) FindLowStock(ctx context.Context) ([]catalog.Product, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	query := conn.
		Where("quantity <= low_stock_threshold").
		Order("quantity ASC").
		Order(productOrder)
	return r.find(query, "find low stock products")
}

func (r *GormProductRepository) find(query *gorm.DB, op string) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(op, err)
	}
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, bool, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, false, err
	}
	var model models.ProductModel
	if err := conn.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, translateError("find product", err)
	}
	return model.ToDomain(), true, nil
}

// Save inserts the product or replaces every column of the stored record
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return err
	}
	model := models.ProductModelFromDomain(product)
	err = conn.Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error
	return translateError("save product", err)
}

// productDetailColumns are the columns UpdateDetails may write. Quantity is
// absent: only the stock ledger moves it after creation.
var productDetailColumns = []string{"name", "category", "cost_price", "selling_price", "low_stock_threshold", "updated_at"}

// UpdateDetails writes the editable fields of product. The stored quantity
// is left as it is, so stock moved since product was read is kept.
func (r *GormProductRepository) UpdateDetails(ctx context.Context, product *catalog.Product) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return err
	}
	model := models.ProductModelFromDomain(product)
	result := conn.Model(&models.ProductModel{}).
		Where("id = ?", product.ID).
		Select(productDetailColumns).
		Updates(model)
	if result.Error != nil {
		return translateError("update product", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("NOT_FOUND", "Product not found")
	}
	return nil
}

// Delete removes a product. Missing products are ignored.
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return err
	}
	err = conn.Where("id = ?", id).Delete(&models.ProductModel{}).Error
	return translateError("delete product", err)
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
