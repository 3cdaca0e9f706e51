package application

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/product/domain"
)

// ProductCache is a best-effort read-through cache over get-by-id; a miss
// or a cache outage just falls back to the repository.
type ProductCache interface {
	Get(ctx context.Context, id int64) (*domain.Product, bool)
	Set(ctx context.Context, product *domain.Product)
	Invalidate(ctx context.Context, id int64)
}

// NoopCache disables caching.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, id int64) (*domain.Product, bool) { return nil, false }
func (NoopCache) Set(ctx context.Context, product *domain.Product)          {}
func (NoopCache) Invalidate(ctx context.Context, id int64)                  {}

// CreateProductRequest carries create/update commands.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// ProductApplicationService owns the product catalog.
type ProductApplicationService struct {
	repo   domain.ProductRepository
	cache  ProductCache
	tracer trace.Tracer
}

func NewProductApplicationService(repo domain.ProductRepository, cache ProductCache, tracer trace.Tracer) *ProductApplicationService {
	return &ProductApplicationService{repo: repo, cache: cache, tracer: tracer}
}

func (s *ProductApplicationService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "product.CreateProduct")
	defer span.End()

	product := &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().Int64("product_id", product.ID).Str("name", product.Name).Msg("product created")
	return product, nil
}

func (s *ProductApplicationService) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "product.GetProductByID")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", id))

	if product, ok := s.cache.Get(ctx, id); ok {
		span.AddEvent("cache hit")
		return product, nil
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, product)
	return product, nil
}

func (s *ProductApplicationService) GetAllProducts(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "product.GetAllProducts")
	defer span.End()
	return s.repo.FindAll(ctx)
}

func (s *ProductApplicationService) GetProductsByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "product.GetProductsByCategory")
	defer span.End()
	return s.repo.FindByCategory(ctx, category)
}

func (s *ProductApplicationService) SearchProductsByName(ctx context.Context, name string) ([]*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "product.SearchProductsByName")
	defer span.End()
	return s.repo.SearchByName(ctx, name)
}

func (s *ProductApplicationService) UpdateProduct(ctx context.Context, id int64, req *CreateProductRequest) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "product.UpdateProduct")
	defer span.End()

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Category = req.Category

	if err := s.repo.Update(ctx, product); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.cache.Invalidate(ctx, id)
	return product, nil
}

func (s *ProductApplicationService) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "product.DeleteProduct")
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)
	logger.Ctx(ctx).Info().Int64("product_id", id).Msg("product deleted")
	return nil
}
