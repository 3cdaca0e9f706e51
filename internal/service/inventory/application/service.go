package application

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/inventory/domain"
)

// Locker serializes access to one resource across service replicas. The
// zookeeper implementation is used in deployment; NoopLocker serves
// single-instance runs and tests.
type Locker interface {
	WithLock(ctx context.Context, resource string, fn func() error) error
}

// NoopLocker runs fn without any locking.
type NoopLocker struct{}

func (NoopLocker) WithLock(ctx context.Context, resource string, fn func() error) error {
	return fn()
}

// InventoryResponse is the boundary view of a stock counter.
type InventoryResponse struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	Available bool  `json:"available"`
}

// StockUpdateRequest carries add/update commands.
type StockUpdateRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// InventoryApplicationService owns the stock counters. Writes are
// read-modify-write, so the decrease path takes a per-product distributed
// lock; this is the atomicity the order saga relies on when concurrent
// orders race for the same product.
type InventoryApplicationService struct {
	repo   domain.InventoryRepository
	locker Locker
	tracer trace.Tracer
}

func NewInventoryApplicationService(repo domain.InventoryRepository, locker Locker, tracer trace.Tracer) *InventoryApplicationService {
	return &InventoryApplicationService{repo: repo, locker: locker, tracer: tracer}
}

// AddStock tops up a product's counter, creating it on first use.
func (s *InventoryApplicationService) AddStock(ctx context.Context, req *StockUpdateRequest) (*InventoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.AddStock")
	defer span.End()

	var resp *InventoryResponse
	err := s.locker.WithLock(ctx, lockResource(req.ProductID), func() error {
		inv, err := s.repo.FindByProductID(ctx, req.ProductID)
		if errors.Is(err, domain.ErrInventoryNotFound) {
			inv = &domain.Inventory{ProductID: req.ProductID}
		} else if err != nil {
			return err
		}
		inv.Quantity += req.Quantity
		if err := s.repo.Save(ctx, inv); err != nil {
			return err
		}
		resp = toResponse(inv)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().Int64("product_id", req.ProductID).Int("quantity", req.Quantity).Msg("stock added")
	return resp, nil
}

// UpdateStock overwrites a product's counter.
func (s *InventoryApplicationService) UpdateStock(ctx context.Context, req *StockUpdateRequest) (*InventoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.UpdateStock")
	defer span.End()

	var resp *InventoryResponse
	err := s.locker.WithLock(ctx, lockResource(req.ProductID), func() error {
		inv, err := s.repo.FindByProductID(ctx, req.ProductID)
		if err != nil {
			return err
		}
		inv.Quantity = req.Quantity
		if err := s.repo.Save(ctx, inv); err != nil {
			return err
		}
		resp = toResponse(inv)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return resp, nil
}

// CheckAvailability confirms the product's counter is reachable. It fails
// only when the record is missing; insufficiency is the decrease step's
// concern, which is what makes the order saga's degraded path possible.
func (s *InventoryApplicationService) CheckAvailability(ctx context.Context, productID int64, requiredQuantity int) (*InventoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.CheckAvailability")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("product.id", productID),
		attribute.Int("required.quantity", requiredQuantity),
	)

	inv, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return toResponse(inv), nil
}

// GetByProductID returns a product's counter.
func (s *InventoryApplicationService) GetByProductID(ctx context.Context, productID int64) (*InventoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.GetByProductID")
	defer span.End()

	inv, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toResponse(inv), nil
}

// DecreaseStock debits the counter under the per-product lock.
func (s *InventoryApplicationService) DecreaseStock(ctx context.Context, productID int64, quantity int) (*InventoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.DecreaseStock")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("product.id", productID),
		attribute.Int("decrease.quantity", quantity),
	)

	var resp *InventoryResponse
	err := s.locker.WithLock(ctx, lockResource(productID), func() error {
		inv, err := s.repo.FindByProductID(ctx, productID)
		if err != nil {
			return err
		}
		if err := inv.Decrease(quantity); err != nil {
			return err
		}
		if err := s.repo.Save(ctx, inv); err != nil {
			return err
		}
		resp = toResponse(inv)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stock decrease rejected")
		return nil, err
	}
	logger.Ctx(ctx).Info().Int64("product_id", productID).Int("quantity", quantity).Msg("stock decreased")
	return resp, nil
}

func lockResource(productID int64) string {
	return fmt.Sprintf("inventory-%d", productID)
}

func toResponse(inv *domain.Inventory) *InventoryResponse {
	return &InventoryResponse{
		ID:        inv.ID,
		ProductID: inv.ProductID,
		Quantity:  inv.Quantity,
		Available: inv.Available(),
	}
}
