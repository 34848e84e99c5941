package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SaleRepository persists sales. Sales are append-only, so there is no
// delete operation.
type SaleRepository interface {
	// FindAll returns every sale ordered by timestamp, oldest first
	FindAll(ctx context.Context) ([]Sale, error)

	// FindByID returns the sale and true, or nil and false when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, bool, error)

	// FindSince returns sales at or after since, oldest first
	FindSince(ctx context.Context, since time.Time) ([]Sale, error)

	// FindRecent returns up to limit sales, newest first
	FindRecent(ctx context.Context, limit int) ([]Sale, error)

	// Append inserts a new sale. Stored sales are never replaced; a
	// duplicate ID fails with shared.ErrAlreadyExists.
	Append(ctx context.Context, sale *Sale) error
}
