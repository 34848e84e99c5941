package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/royale/pos/internal/domain/catalog"
	"github.com/royale/pos/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db := NewDatabase(&config.DatabaseConfig{
		Path:        ":memory:",
		BusyTimeout: time.Second,
	}, zaptest.NewLogger(t))
	require.NoError(t, db.Initialize(context.Background()))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestProduct(t *testing.T, name string, price int64, qty, threshold int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductDetails{
		Name:              name,
		SellingPrice:      decimal.NewFromInt(price),
		LowStockThreshold: threshold,
	}, qty)
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}
