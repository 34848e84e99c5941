package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindAll returns every product ordered by name
	FindAll(ctx context.Context) ([]Product, error)

	// Search returns products whose name contains term, case-insensitively
	Search(ctx context.Context, term string) ([]Product, error)

	// FindLowStock returns products at or below their threshold
	FindLowStock(ctx context.Context) ([]Product, error)

	// FindByID returns the product and true, or nil and false when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Product, bool, error)

	// Save inserts or replaces the whole product record
	Save(ctx context.Context, product *Product) error

	// UpdateDetails writes the editable fields and leaves the stored
	// quantity untouched. A missing product fails with shared.ErrNotFound.
	UpdateDetails(ctx context.Context, product *Product) error

	// Delete removes a product. Deleting a missing product is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}
