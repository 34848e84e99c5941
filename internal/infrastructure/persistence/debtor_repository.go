package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/partner"
	"github.com/royale/pos/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDebtorRepository implements DebtorRepository using GORM
type GormDebtorRepository struct {
	db *Database
}

// NewGormDebtorRepository creates a new GormDebtorRepository
func NewGormDebtorRepository(db *Database) *GormDebtorRepository {
	return &GormDebtorRepository{db: db}
}

// FindAll returns every debtor, largest balance first
func (r *GormDebtorRepository) FindAll(ctx context.Context) ([]partner.Debtor, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	var rows []models.DebtorModel
	// amount is decimal text, so cast for numeric ordering
	if err := conn.Order("CAST(amount AS REAL) DESC, name COLLATE NOCASE ASC").Find(&rows).Error; err != nil {
		return nil, translateError("find debtors", err)
	}
	debtors := make([]partner.Debtor, len(rows))
	for i := range rows {
		debtors[i] = *rows[i].ToDomain()
	}
	return debtors, nil
}

// FindByID finds a debtor by ID
func (r *GormDebtorRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Debtor, bool, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, false, err
	}
	var model models.DebtorModel
	if err := conn.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, translateError("find debtor", err)
	}
	return model.ToDomain(), true, nil
}

// Save inserts or replaces the debtor
func (r *GormDebtorRepository) Save(ctx context.Context, d *partner.Debtor) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return err
	}
	model := models.DebtorModelFromDomain(d)
	err = conn.Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error
	return translateError("save debtor", err)
}

// Delete removes a debtor. Missing debtors are ignored.
func (r *GormDebtorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return err
	}
	err = conn.Where("id = ?", id).Delete(&models.DebtorModel{}).Error
	return translateError("delete debtor", err)
}

// Ensure GormDebtorRepository implements DebtorRepository
var _ partner.DebtorRepository = (*GormDebtorRepository)(nil)
