package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"bazaar/internal/service/inventory/domain"
)

type memoryInventoryRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Inventory // keyed by product id
}

func newMemoryRepo() *memoryInventoryRepository {
	return &memoryInventoryRepository{rows: map[int64]domain.Inventory{}}
}

func (r *memoryInventoryRepository) FindByProductID(ctx context.Context, productID int64) (*domain.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[productID]
	if !ok {
		return nil, domain.ErrInventoryNotFound
	}
	return &row, nil
}

func (r *memoryInventoryRepository) Save(ctx context.Context, inv *domain.Inventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv.ID == 0 {
		r.nextID++
		inv.ID = r.nextID
	}
	r.rows[inv.ProductID] = *inv
	return nil
}

func newTestService(repo domain.InventoryRepository) *InventoryApplicationService {
	return NewInventoryApplicationService(repo, NoopLocker{}, otel.Tracer("test"))
}

func TestAddStockCreatesCounterOnFirstUse(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	resp, err := svc.AddStock(context.Background(), &StockUpdateRequest{ProductID: 7, Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.Quantity)
	assert.True(t, resp.Available)

	resp, err = svc.AddStock(context.Background(), &StockUpdateRequest{ProductID: 7, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 15, resp.Quantity)
}

func TestUpdateStockRequiresExistingCounter(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.UpdateStock(context.Background(), &StockUpdateRequest{ProductID: 7, Quantity: 3})
	assert.ErrorIs(t, err, domain.ErrInventoryNotFound)
}

func TestDecreaseStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	_, err := svc.AddStock(context.Background(), &StockUpdateRequest{ProductID: 7, Quantity: 10})
	require.NoError(t, err)

	resp, err := svc.DecreaseStock(context.Background(), 7, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, resp.Quantity)

	// Requesting more than remains is a business rejection and leaves the
	// counter untouched.
	_, err = svc.DecreaseStock(context.Background(), 7, 20)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	current, err := svc.GetByProductID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 6, current.Quantity)
}

func TestDecreaseStockUnknownProduct(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	_, err := svc.DecreaseStock(context.Background(), 42, 1)
	assert.ErrorIs(t, err, domain.ErrInventoryNotFound)
}

func TestCheckAvailabilityFailsOnlyWhenMissing(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	_, err := svc.AddStock(context.Background(), &StockUpdateRequest{ProductID: 7, Quantity: 2})
	require.NoError(t, err)

	// A required quantity beyond the stock still succeeds: insufficiency
	// is only enforced by the decrease step.
	resp, err := svc.CheckAvailability(context.Background(), 7, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Quantity)

	_, err = svc.CheckAvailability(context.Background(), 8, 1)
	assert.ErrorIs(t, err, domain.ErrInventoryNotFound)
}

func TestAvailabilityFlag(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	_, err := svc.AddStock(context.Background(), &StockUpdateRequest{ProductID: 7, Quantity: 1})
	require.NoError(t, err)

	resp, err := svc.DecreaseStock(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Quantity)
	assert.False(t, resp.Available)
}
