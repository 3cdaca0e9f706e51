package application

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"bazaar/internal/pkg/breaker"
	"bazaar/internal/service/aggregation/port"
)

type fakeProducts struct {
	calls atomic.Int64
	info  *port.ProductInfo
	err   error
}

func (f *fakeProducts) GetProduct(ctx context.Context, productID int64) (*port.ProductInfo, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

type fakeInventory struct {
	calls atomic.Int64
	info  *port.InventoryInfo
	err   error
}

func (f *fakeInventory) GetInventory(ctx context.Context, productID int64) (*port.InventoryInfo, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

func permissiveBreaker(name string) *breaker.Breaker {
	return breaker.New(name, breaker.Settings{OpenTimeout: time.Minute})
}

// trippedBreaker returns a breaker already in the OPEN state.
func trippedBreaker(t *testing.T, name string) *breaker.Breaker {
	t.Helper()
	b := breaker.New(name, breaker.Settings{
		WindowSize:   1,
		MinimumCalls: 1,
		OpenTimeout:  time.Minute,
	})
	_ = b.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("boom")
	})
	require.Equal(t, breaker.StateOpen, b.State())
	return b
}

func newTestService(products port.ProductService, inventory port.InventoryService,
	productBreaker, inventoryBreaker *breaker.Breaker) *AggregationService {
	return NewAggregationService(products, inventory, productBreaker, inventoryBreaker, otel.Tracer("test"))
}

func laptop() *port.ProductInfo {
	return &port.ProductInfo{ID: 7, Name: "Laptop", Description: "15 inch", Price: 999.99, Category: "electronics"}
}

func TestAggregationMergesBothSources(t *testing.T) {
	products := &fakeProducts{info: laptop()}
	inventory := &fakeInventory{info: &port.InventoryInfo{Quantity: 12, Available: true}}
	svc := newTestService(products, inventory, permissiveBreaker("product"), permissiveBreaker("inventory"))

	result, err := svc.GetAggregatedProduct(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", result.Name)
	assert.Equal(t, 999.99, result.Price)
	assert.Equal(t, 12, result.Quantity)
	assert.True(t, result.StockAvailable)
}

func TestAggregationFailsWhenProductFails(t *testing.T) {
	products := &fakeProducts{err: port.ErrProductNotFound}
	inventory := &fakeInventory{info: &port.InventoryInfo{Quantity: 12, Available: true}}
	svc := newTestService(products, inventory, permissiveBreaker("product"), permissiveBreaker("inventory"))

	// Inventory being healthy cannot rescue a failed product read.
	_, err := svc.GetAggregatedProduct(context.Background(), 7)
	assert.ErrorIs(t, err, port.ErrProductNotFound)
}

func TestAggregationDegradesWhenInventoryFails(t *testing.T) {
	products := &fakeProducts{info: laptop()}
	inventory := &fakeInventory{err: errors.New("connection refused")}
	svc := newTestService(products, inventory, permissiveBreaker("product"), permissiveBreaker("inventory"))

	result, err := svc.GetAggregatedProduct(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", result.Name)
	assert.Zero(t, result.Quantity)
	assert.False(t, result.StockAvailable)
}

func TestAggregationDegradesWhenInventoryBreakerOpen(t *testing.T) {
	products := &fakeProducts{info: laptop()}
	inventory := &fakeInventory{info: &port.InventoryInfo{Quantity: 12, Available: true}}
	svc := newTestService(products, inventory, permissiveBreaker("product"), trippedBreaker(t, "inventory"))

	result, err := svc.GetAggregatedProduct(context.Background(), 7)
	require.NoError(t, err)
	assert.Zero(t, inventory.calls.Load(), "short-circuited inventory call never reaches the downstream")
	assert.Zero(t, result.Quantity)
	assert.False(t, result.StockAvailable)
}

func TestAggregationShortCircuitsWhenProductBreakerOpen(t *testing.T) {
	products := &fakeProducts{info: laptop()}
	inventory := &fakeInventory{info: &port.InventoryInfo{Quantity: 12, Available: true}}
	svc := newTestService(products, inventory, trippedBreaker(t, "product"), permissiveBreaker("inventory"))

	_, err := svc.GetAggregatedProduct(context.Background(), 7)
	assert.ErrorIs(t, err, breaker.ErrOpen)
	assert.Zero(t, products.calls.Load(), "short-circuited product call never reaches the downstream")
}
