package application

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"bazaar/internal/pkg/breaker"
	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/aggregation/port"
)

// AggregatedProduct merges the catalog entry with its live stock view.
type AggregatedProduct struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	Category       string  `json:"category"`
	Quantity       int     `json:"quantity"`
	StockAvailable bool    `json:"stockAvailable"`
}

// AggregationService composes product and inventory reads. The product
// leg is mandatory; the inventory leg is best effort and degrades to an
// unavailable zero-stock view when its call fails or is short-circuited.
type AggregationService struct {
	products         port.ProductService
	inventory        port.InventoryService
	productBreaker   *breaker.Breaker
	inventoryBreaker *breaker.Breaker
	tracer           trace.Tracer
}

func NewAggregationService(
	products port.ProductService,
	inventory port.InventoryService,
	productBreaker *breaker.Breaker,
	inventoryBreaker *breaker.Breaker,
	tracer trace.Tracer,
) *AggregationService {
	return &AggregationService{
		products:         products,
		inventory:        inventory,
		productBreaker:   productBreaker,
		inventoryBreaker: inventoryBreaker,
		tracer:           tracer,
	}
}

func (s *AggregationService) GetAggregatedProduct(ctx context.Context, productID int64) (*AggregatedProduct, error) {
	ctx, span := s.tracer.Start(ctx, "aggregation.GetAggregatedProduct")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", productID))

	var (
		product *port.ProductInfo
		stock   *port.InventoryInfo
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := breaker.Do(gctx, s.productBreaker, func(ctx context.Context) (*port.ProductInfo, error) {
			return s.products.GetProduct(ctx, productID)
		})
		if err != nil {
			return err
		}
		product = p
		return nil
	})

	g.Go(func() error {
		inv, err := breaker.Do(gctx, s.inventoryBreaker, func(ctx context.Context) (*port.InventoryInfo, error) {
			return s.inventory.GetInventory(ctx, productID)
		})
		if err != nil {
			// Stock is decoration on this read. Serve the catalog entry
			// with an explicit out-of-stock view instead of failing.
			logger.Ctx(gctx).Warn().Err(err).
				Int64("product_id", productID).
				Bool("short_circuited", errors.Is(err, breaker.ErrOpen)).
				Msg("inventory unavailable, serving degraded stock view")
			inv = &port.InventoryInfo{Quantity: 0, Available: false}
		}
		stock = inv
		return nil
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &AggregatedProduct{
		ID:             product.ID,
		Name:           product.Name,
		Description:    product.Description,
		Price:          product.Price,
		Category:       product.Category,
		Quantity:       stock.Quantity,
		StockAvailable: stock.Available,
	}, nil
}
