package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"bazaar/internal/service/product/domain"
)

type memoryProductRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Product
	reads  int
}

func newMemoryRepo() *memoryProductRepository {
	return &memoryProductRepository{rows: map[int64]domain.Product{}}
}

func (r *memoryProductRepository) Create(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	r.rows[p.ID] = *p
	return nil
}

func (r *memoryProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	row, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &row, nil
}

func (r *memoryProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Product, 0, len(r.rows))
	for id := int64(1); id <= r.nextID; id++ {
		if row, ok := r.rows[id]; ok {
			copied := row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryProductRepository) FindByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	all, _ := r.FindAll(ctx)
	out := all[:0]
	for _, p := range all {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryProductRepository) SearchByName(ctx context.Context, name string) ([]*domain.Product, error) {
	all, _ := r.FindAll(ctx)
	out := all[:0]
	for _, p := range all {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryProductRepository) Update(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	r.rows[p.ID] = *p
	return nil
}

func (r *memoryProductRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.rows, id)
	return nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[int64]domain.Product
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[int64]domain.Product{}}
}

func (c *memoryCache) Get(ctx context.Context, id int64) (*domain.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (c *memoryCache) Set(ctx context.Context, p *domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[p.ID] = *p
}

func (c *memoryCache) Invalidate(ctx context.Context, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

func TestCreateAndGetProduct(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewProductApplicationService(repo, NoopCache{}, otel.Tracer("test"))

	created, err := svc.CreateProduct(context.Background(), &CreateProductRequest{
		Name: "Laptop", Description: "15 inch", Price: 999.99, Category: "electronics",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := svc.GetProductByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", got.Name)
	assert.Equal(t, 999.99, got.Price)
}

func TestGetProductPopulatesCache(t *testing.T) {
	repo := newMemoryRepo()
	cache := newMemoryCache()
	svc := NewProductApplicationService(repo, cache, otel.Tracer("test"))

	created, err := svc.CreateProduct(context.Background(), &CreateProductRequest{Name: "Mug", Price: 5})
	require.NoError(t, err)

	_, err = svc.GetProductByID(context.Background(), created.ID)
	require.NoError(t, err)
	readsAfterMiss := repo.reads

	// Second read must come from the cache.
	_, err = svc.GetProductByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, readsAfterMiss, repo.reads)
}

func TestUpdateProductInvalidatesCache(t *testing.T) {
	repo := newMemoryRepo()
	cache := newMemoryCache()
	svc := NewProductApplicationService(repo, cache, otel.Tracer("test"))

	created, err := svc.CreateProduct(context.Background(), &CreateProductRequest{Name: "Mug", Price: 5})
	require.NoError(t, err)
	_, err = svc.GetProductByID(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = svc.UpdateProduct(context.Background(), created.ID, &CreateProductRequest{Name: "Mug", Price: 7})
	require.NoError(t, err)

	got, err := svc.GetProductByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got.Price)
}

func TestDeleteProduct(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewProductApplicationService(repo, NoopCache{}, otel.Tracer("test"))

	created, err := svc.CreateProduct(context.Background(), &CreateProductRequest{Name: "Mug", Price: 5})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), created.ID))
	_, err = svc.GetProductByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestSearchAndCategory(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewProductApplicationService(repo, NoopCache{}, otel.Tracer("test"))

	_, err := svc.CreateProduct(context.Background(), &CreateProductRequest{Name: "Laptop", Category: "electronics"})
	require.NoError(t, err)
	_, err = svc.CreateProduct(context.Background(), &CreateProductRequest{Name: "Mug", Category: "kitchen"})
	require.NoError(t, err)

	byCategory, err := svc.GetProductsByCategory(context.Background(), "electronics")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Laptop", byCategory[0].Name)

	byName, err := svc.SearchProductsByName(context.Background(), "Mug")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "kitchen", byName[0].Category)
}
