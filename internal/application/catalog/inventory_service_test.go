package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/catalog"
	"github.com/royale/pos/internal/domain/inventory"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// memoryProducts is an in-memory ProductRepository
type memoryProducts struct {
	mu       sync.Mutex
	products map[uuid.UUID]catalog.Product
}

func newMemoryProducts() *memoryProducts {
	return &memoryProducts{products: make(map[uuid.UUID]catalog.Product)}
}

func (r *memoryProducts) sorted(keep func(catalog.Product) bool) []catalog.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out
}

func (r *memoryProducts) FindAll(context.Context) ([]catalog.Product, error) {
	return r.sorted(func(catalog.Product) bool { return true }), nil
}

func (r *memoryProducts) Search(_ context.Context, term string) ([]catalog.Product, error) {
	term = strings.ToLower(term)
	return r.sorted(func(p catalog.Product) bool { return strings.Contains(strings.ToLower(p.Name), term) }), nil
}

func (r *memoryProducts) FindLowStock(context.Context) ([]catalog.Product, error) {
	return r.sorted(func(p catalog.Product) bool { return p.IsLowStock() }), nil
}

func (r *memoryProducts) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, false, nil
	}
	p.ClearDomainEvents()
	return &p, true, nil
}

func (r *memoryProducts) Save(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *p
	stored.ClearDomainEvents()
	r.products[p.ID] = stored
	return nil
}

func (r *memoryProducts) UpdateDetails(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.products[p.ID]
	if !ok {
		return shared.ErrNotFound
	}
	quantity := stored.Quantity
	stored = *p
	stored.ClearDomainEvents()
	stored.Quantity = quantity
	r.products[p.ID] = stored
	return nil
}

func (r *memoryProducts) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

// memoryLedger applies movements to memoryProducts
type memoryLedger struct {
	products  *memoryProducts
	movements []inventory.StockMovement
	recordErr error
}

func (l *memoryLedger) Apply(_ context.Context, m *inventory.StockMovement) (int64, error) {
	l.products.mu.Lock()
	defer l.products.mu.Unlock()
	p, ok := l.products.products[m.ProductID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	p.Quantity += m.Delta
	l.products.products[m.ProductID] = p
	m.BalanceAfter = p.Quantity
	l.movements = append(l.movements, *m)
	return p.Quantity, nil
}

func (l *memoryLedger) Record(_ context.Context, m *inventory.StockMovement) error {
	if l.recordErr != nil {
		return l.recordErr
	}
	l.movements = append(l.movements, *m)
	return nil
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return m.Called(ctx, types).Error(0)
}

func newTestInventoryService(t *testing.T) (*InventoryService, *memoryProducts, *memoryLedger, *mockPublisher) {
	t.Helper()
	products := newMemoryProducts()
	ledger := &memoryLedger{products: products}
	publisher := &mockPublisher{}
	svc := NewInventoryService(products, ledger, publisher, zaptest.NewLogger(t), DefaultDefaults())
	return svc, products, ledger, publisher
}

func TestInventoryService_AddProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("stores product with defaults and opening movement", func(t *testing.T) {
		svc, products, ledger, publisher := newTestInventoryService(t)
		publisher.On("Publish", ctx, []string{catalog.EventTypeProductCreated}).Return(nil).Once()

		resp, err := svc.AddProduct(ctx, ProductForm{Name: "Sugar 1kg", SellingPrice: "1000", Quantity: "10"})
		require.NoError(t, err)

		assert.Equal(t, "GENERAL", resp.Category)
		assert.Equal(t, "800", resp.CostPrice.String())
		assert.Equal(t, int64(5), resp.LowStockThreshold)
		assert.Equal(t, int64(10), resp.Quantity)
		assert.False(t, resp.IsLowStock)

		stored, found, _ := products.FindByID(ctx, resp.ID)
		require.True(t, found)
		assert.Equal(t, "Sugar 1kg", stored.Name)

		require.Len(t, ledger.movements, 1)
		assert.Equal(t, inventory.MovementOpening, ledger.movements[0].Type)
		assert.Equal(t, int64(10), ledger.movements[0].Delta)
		assert.Equal(t, int64(10), ledger.movements[0].BalanceAfter)
		publisher.AssertExpectations(t)
	})

	t.Run("invalid form writes nothing", func(t *testing.T) {
		svc, products, ledger, publisher := newTestInventoryService(t)

		_, err := svc.AddProduct(ctx, ProductForm{Name: "", SellingPrice: "-5"})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 2)

		all, _ := products.FindAll(ctx)
		assert.Empty(t, all)
		assert.Empty(t, ledger.movements)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("opening movement failure keeps the product", func(t *testing.T) {
		svc, products, ledger, publisher := newTestInventoryService(t)
		ledger.recordErr = errors.New("disk full")
		publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.AddProduct(ctx, ProductForm{Name: "Salt", SellingPrice: "500"})
		require.NoError(t, err)
		_, found, _ := products.FindByID(ctx, resp.ID)
		assert.True(t, found)
	})
}

func TestInventoryService_AdjustStock(t *testing.T) {
	ctx := context.Background()
	svc, _, ledger, publisher := newTestInventoryService(t)
	publisher.On("Publish", ctx, []string{catalog.EventTypeProductCreated}).Return(nil)

	created, err := svc.AddProduct(ctx, ProductForm{Name: "Milk", SellingPrice: "1500", Quantity: "8", LowStockThreshold: "5"})
	require.NoError(t, err)

	t.Run("zero delta is rejected", func(t *testing.T) {
		_, err := svc.AdjustStock(ctx, created.ID, 0, "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.AdjustStock(ctx, uuid.New(), 3, "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("crossing the threshold publishes an alert", func(t *testing.T) {
		publisher.On("Publish", ctx, []string{catalog.EventTypeStockBelowThreshold}).Return(nil).Once()

		resp, err := svc.AdjustStock(ctx, created.ID, -4, " spoiled ")
		require.NoError(t, err)
		assert.Equal(t, int64(4), resp.Quantity)
		assert.True(t, resp.IsLowStock)

		last := ledger.movements[len(ledger.movements)-1]
		assert.Equal(t, inventory.MovementAdjustment, last.Type)
		assert.Equal(t, "spoiled", last.Reason)
		assert.Equal(t, int64(4), last.BalanceAfter)
		publisher.AssertExpectations(t)
	})

	t.Run("restock does not alert", func(t *testing.T) {
		resp, err := svc.AdjustStock(ctx, created.ID, 20, "delivery")
		require.NoError(t, err)
		assert.Equal(t, int64(24), resp.Quantity)
		assert.False(t, resp.IsLowStock)
	})
}

func TestInventoryService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	svc, _, _, publisher := newTestInventoryService(t)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	created, err := svc.AddProduct(ctx, ProductForm{Name: "Bread", SellingPrice: "3000", Quantity: "12"})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(ctx, created.ID, ProductForm{
		Name: "Bread (large)", Category: "bakery", SellingPrice: "3500", CostPrice: "2500", Quantity: "999",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bread (large)", updated.Name)
	assert.Equal(t, "bakery", updated.Category)
	assert.Equal(t, "2500", updated.CostPrice.String())
	assert.Equal(t, int64(12), updated.Quantity)
	publisher.AssertCalled(t, "Publish", ctx, []string{catalog.EventTypeProductUpdated})

	_, err = svc.UpdateProduct(ctx, uuid.New(), ProductForm{Name: "x", SellingPrice: "1"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInventoryService_UpdateProductCostPrice(t *testing.T) {
	ctx := context.Background()
	svc, _, _, publisher := newTestInventoryService(t)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	created, err := svc.AddProduct(ctx, ProductForm{Name: "Bread", SellingPrice: "3000", CostPrice: "1700", Quantity: "12"})
	require.NoError(t, err)

	t.Run("blank cost keeps the current cost", func(t *testing.T) {
		updated, err := svc.UpdateProduct(ctx, created.ID, ProductForm{Name: "Bread", SellingPrice: "3500"})
		require.NoError(t, err)
		assert.Equal(t, "1700", updated.CostPrice.String())
		assert.Equal(t, "3500", updated.SellingPrice.String())
	})

	t.Run("explicit cost replaces it", func(t *testing.T) {
		updated, err := svc.UpdateProduct(ctx, created.ID, ProductForm{Name: "Bread", SellingPrice: "3500", CostPrice: "2100.25"})
		require.NoError(t, err)
		assert.Equal(t, "2100.25", updated.CostPrice.String())
	})

	t.Run("fractional selling price is rejected", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, created.ID, ProductForm{Name: "Bread", SellingPrice: "3500.5"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		got, err := svc.GetProduct(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "3500", got.SellingPrice.String())
	})
}

func TestInventoryService_UpdateProductKeepsConcurrentStock(t *testing.T) {
	ctx := context.Background()
	svc, products, ledger, publisher := newTestInventoryService(t)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	created, err := svc.AddProduct(ctx, ProductForm{Name: "Milk 500ml", SellingPrice: "1500", Quantity: "10"})
	require.NoError(t, err)

	edit := &sellOnFind{ProductRepository: products, sell: func() {
		sold, err := inventory.NewStockMovement(created.ID, inventory.MovementSale, -4)
		require.NoError(t, err)
		_, err = ledger.Apply(ctx, sold)
		require.NoError(t, err)
	}}
	editor := NewInventoryService(edit, ledger, publisher, zaptest.NewLogger(t), DefaultDefaults())

	updated, err := editor.UpdateProduct(ctx, created.ID, ProductForm{Name: "Milk 1L", SellingPrice: "2800"})
	require.NoError(t, err)
	assert.Equal(t, "Milk 1L", updated.Name)
	assert.Equal(t, int64(6), updated.Quantity)

	stored, found, err := products.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(6), stored.Quantity)
	assert.Equal(t, "Milk 1L", stored.Name)
}

// sellOnFind moves stock right after the first product read
type sellOnFind struct {
	catalog.ProductRepository
	once sync.Once
	sell func()
}

func (r *sellOnFind) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, bool, error) {
	p, found, err := r.ProductRepository.FindByID(ctx, id)
	r.once.Do(r.sell)
	return p, found, err
}

func TestInventoryService_Queries(t *testing.T) {
	ctx := context.Background()
	svc, _, _, publisher := newTestInventoryService(t)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	for _, form := range []ProductForm{
		{Name: "Sugar 1kg", SellingPrice: "4500", Quantity: "20"},
		{Name: "brown sugar", SellingPrice: "5000", Quantity: "2"},
		{Name: "Salt", SellingPrice: "1000", Quantity: "5"},
	} {
		_, err := svc.AddProduct(ctx, form)
		require.NoError(t, err)
	}

	all, err := svc.ListProducts(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := svc.ListProducts(ctx, "SUGAR")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "brown sugar", found[0].Name)

	low, err := svc.LowStockProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, low, 2)

	n, err := svc.LowStockCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := svc.GetProduct(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, all[0].Name, got.Name)

	_, err = svc.GetProduct(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInventoryService_RemoveProduct(t *testing.T) {
	ctx := context.Background()
	svc, products, _, publisher := newTestInventoryService(t)
	publisher.On("Publish", ctx, []string{catalog.EventTypeProductCreated}).Return(nil)
	publisher.On("Publish", ctx, []string{catalog.EventTypeProductDeleted}).Return(nil).Once()

	created, err := svc.AddProduct(ctx, ProductForm{Name: "Tea", SellingPrice: "2000"})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveProduct(ctx, created.ID))
	_, found, _ := products.FindByID(ctx, created.ID)
	assert.False(t, found)

	require.NoError(t, svc.RemoveProduct(ctx, created.ID))
	publisher.AssertExpectations(t)
}
