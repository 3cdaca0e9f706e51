package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"bazaar/internal/pkg/breaker"
	"bazaar/internal/service/order/domain"
	"bazaar/internal/service/order/port"

	"github.com/pkg/errors"
)

// memoryOrderRepository is an in-memory stand-in for the MySQL repository.
type memoryOrderRepository struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]domain.Order
}

func newMemoryRepo() *memoryOrderRepository {
	return &memoryOrderRepository{orders: map[int64]domain.Order{}}
}

func (r *memoryOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID == 0 {
		r.nextID++
		order.ID = r.nextID
		order.CreatedAt = time.Now()
	}
	r.orders[order.ID] = *order
	return nil
}

func (r *memoryOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (r *memoryOrderRepository) FindByUserID(ctx context.Context, userID int64) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for id := range r.orders {
		o := r.orders[id]
		if o.UserID == userID {
			out = append(out, &o)
		}
	}
	return out, nil
}

func (r *memoryOrderRepository) FindByProductID(ctx context.Context, productID int64) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for id := range r.orders {
		o := r.orders[id]
		if o.ProductID == productID {
			out = append(out, &o)
		}
	}
	return out, nil
}

// fakeInventory records calls and fails on demand.
type fakeInventory struct {
	availabilityErr error
	decreaseErr     error

	availabilityCalls int
	decreaseCalls     int
	lastProductID     int64
	lastQuantity      int
}

func (f *fakeInventory) CheckAvailability(ctx context.Context, productID int64, quantity int) error {
	f.availabilityCalls++
	return f.availabilityErr
}

func (f *fakeInventory) DecreaseStock(ctx context.Context, productID int64, quantity int) error {
	f.decreaseCalls++
	f.lastProductID = productID
	f.lastQuantity = quantity
	return f.decreaseErr
}

type fakePublisher struct {
	events []*domain.OrderCreatedEvent
}

func (f *fakePublisher) PublishOrderCreated(ctx context.Context, event *domain.OrderCreatedEvent) error {
	f.events = append(f.events, event)
	return nil
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

func newTestService(repo domain.OrderRepository, inv port.InventoryService, pub port.EventPublisher,
	availability, decrease *breaker.Breaker) *OrderApplicationService {
	return NewOrderApplicationService(repo, inv, pub, otel.Tracer("test"), availability, decrease)
}

func TestCreateOrderConfirmedPath(t *testing.T) {
	repo := newMemoryRepo()
	inv := &fakeInventory{}
	pub := &fakePublisher{}
	svc := newTestService(repo, inv, pub, permissiveBreaker("avail"), permissiveBreaker("decrease"))

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{UserID: 1, ProductID: 7, Quantity: 4})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, 4, resp.Quantity)
	assert.Equal(t, 1, inv.decreaseCalls)
	assert.Equal(t, int64(7), inv.lastProductID)
	assert.Equal(t, 4, inv.lastQuantity)

	stored, err := repo.FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)

	require.Len(t, pub.events, 1)
	assert.Equal(t, resp.ID, pub.events[0].OrderID)
	assert.Equal(t, string(domain.StatusConfirmed), pub.events[0].Status)
}

func TestCreateOrderInsufficientStockCancels(t *testing.T) {
	repo := newMemoryRepo()
	inv := &fakeInventory{decreaseErr: port.ErrInsufficientStock}
	pub := &fakePublisher{}
	svc := newTestService(repo, inv, pub, permissiveBreaker("avail"), permissiveBreaker("decrease"))

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{UserID: 1, ProductID: 7, Quantity: 20})
	require.Error(t, err)
	assert.Nil(t, resp, "the cancelled record is not returned to the caller")
	assert.ErrorIs(t, err, ErrOrderProcessingFailed)
	assert.ErrorIs(t, err, port.ErrInsufficientStock, "the cause travels with the failure")

	// The compensated order is persisted as CANCELLED.
	stored, findErr := repo.FindByID(context.Background(), 1)
	require.NoError(t, findErr)
	assert.Equal(t, domain.StatusCancelled, stored.Status)

	assert.Empty(t, pub.events, "no event for a cancelled order")
}

func TestCreateOrderDecreaseShortCircuitCancels(t *testing.T) {
	repo := newMemoryRepo()
	inv := &fakeInventory{}
	pub := &fakePublisher{}
	svc := newTestService(repo, inv, pub, permissiveBreaker("avail"), trippedBreaker(t, "decrease"))

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{UserID: 1, ProductID: 7, Quantity: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOrderProcessingFailed)
	assert.ErrorIs(t, err, breaker.ErrOpen)
	assert.Zero(t, inv.decreaseCalls, "short-circuited decrease never reaches the downstream")

	stored, findErr := repo.FindByID(context.Background(), 1)
	require.NoError(t, findErr)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.Empty(t, pub.events)
}

func TestCreateOrderDegradedPathOnOpenAvailabilityBreaker(t *testing.T) {
	repo := newMemoryRepo()
	inv := &fakeInventory{}
	pub := &fakePublisher{}
	svc := newTestService(repo, inv, pub, trippedBreaker(t, "avail"), permissiveBreaker("decrease"))

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{UserID: 1, ProductID: 7, Quantity: 4})
	require.NoError(t, err, "an open availability breaker degrades, it does not fail")

	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Zero(t, inv.availabilityCalls, "availability call was short-circuited")
	assert.Zero(t, inv.decreaseCalls, "degraded path performs no stock decrease")

	require.Len(t, pub.events, 1)
	assert.Equal(t, string(domain.StatusPending), pub.events[0].Status)
}

func TestCreateOrderDegradedPathOnAvailabilityFailure(t *testing.T) {
	repo := newMemoryRepo()
	inv := &fakeInventory{availabilityErr: errors.New("connection refused")}
	pub := &fakePublisher{}
	svc := newTestService(repo, inv, pub, permissiveBreaker("avail"), permissiveBreaker("decrease"))

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{UserID: 1, ProductID: 7, Quantity: 4})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, 1, inv.availabilityCalls)
	assert.Zero(t, inv.decreaseCalls)
	require.Len(t, pub.events, 1)
}

func TestCreateOrderIsNotIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	inv := &fakeInventory{}
	pub := &fakePublisher{}
	svc := newTestService(repo, inv, pub, permissiveBreaker("avail"), permissiveBreaker("decrease"))

	req := &CreateOrderRequest{UserID: 1, ProductID: 7, Quantity: 1}
	first, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	// Two identical requests create two distinct orders; deduplication is
	// deliberately not provided here.
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, pub.events, 2)
}

func TestGetOrderByIDNotFound(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &fakeInventory{}, &fakePublisher{},
		permissiveBreaker("avail"), permissiveBreaker("decrease"))

	_, err := svc.GetOrderByID(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
