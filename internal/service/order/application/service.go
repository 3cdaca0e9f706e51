package application

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bazaar/internal/pkg/breaker"
	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/order/domain"
	"bazaar/internal/service/order/port"
)

// ErrOrderProcessingFailed signals that the saga aborted after the PENDING
// order was already committed; the returned error always wraps the cause.
var ErrOrderProcessingFailed = errors.New("order processing failed")

var ordersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "orders_created_total",
	Help: "Orders by terminal saga outcome.",
}, []string{"status"})

// OrderApplicationService orchestrates the order-creation saga and the
// read operations of the order boundary.
//
// The two inventory capabilities are guarded by separate breakers on
// purpose: a breaker-open availability check degrades into an optimistic
// PENDING order, while a breaker-open stock decrease aborts the saga.
// Skipping a check is acceptable; silently overselling is not.
type OrderApplicationService struct {
	repo      domain.OrderRepository
	inventory port.InventoryService
	publisher port.EventPublisher
	tracer    trace.Tracer

	availabilityBreaker *breaker.Breaker
	decreaseBreaker     *breaker.Breaker
}

func NewOrderApplicationService(
	repo domain.OrderRepository,
	inventory port.InventoryService,
	publisher port.EventPublisher,
	tracer trace.Tracer,
	availabilityBreaker *breaker.Breaker,
	decreaseBreaker *breaker.Breaker,
) *OrderApplicationService {
	return &OrderApplicationService{
		repo:                repo,
		inventory:           inventory,
		publisher:           publisher,
		tracer:              tracer,
		availabilityBreaker: availabilityBreaker,
		decreaseBreaker:     decreaseBreaker,
	}
}

// CreateOrder runs the saga:
//
//  1. availability check through its breaker; any failure or short-circuit
//     takes the degraded path: persist PENDING, emit the event, succeed;
//  2. persist the PENDING order;
//  3. stock decrease through its breaker; success confirms and emits the
//     event; failure cancels the order and surfaces
//     ErrOrderProcessingFailed with the cause. No event for cancellations.
//
// Within one call the availability check strictly precedes the first
// persist, which precedes the decrease, which precedes the second persist
// and the event; consumers must never observe an event for state that
// storage does not hold yet.
func (s *OrderApplicationService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "order.CreateOrder")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("order.user_id", req.UserID),
		attribute.Int64("order.product_id", req.ProductID),
		attribute.Int("order.quantity", req.Quantity),
	)

	err := s.availabilityBreaker.Execute(ctx, func(ctx context.Context) error {
		return s.inventory.CheckAvailability(ctx, req.ProductID, req.Quantity)
	})
	if err != nil {
		// The stock check is skipped entirely on this path, so the
		// PENDING order may oversell.
		logger.Ctx(ctx).Warn().Err(err).
			Bool("short_circuited", errors.Is(err, breaker.ErrOpen)).
			Int64("product_id", req.ProductID).
			Msg("availability check unavailable, creating order in PENDING state without stock check")
		span.AddEvent("degraded path: availability check skipped")
		return s.createDegraded(ctx, req)
	}

	order, err := domain.NewOrder(req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save initial order")
		return nil, errors.Wrap(err, "failed to save pending order")
	}
	span.AddEvent("pending order persisted")

	err = s.decreaseBreaker.Execute(ctx, func(ctx context.Context) error {
		return s.inventory.DecreaseStock(ctx, req.ProductID, req.Quantity)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stock decrease failed")

		// Compensating action: the decrease did not happen, so the only
		// undo needed is marking our own record CANCELLED.
		if cancelErr := order.Cancel(); cancelErr != nil {
			logger.Ctx(ctx).Error().Err(cancelErr).Int64("order_id", order.ID).Msg("cannot cancel order")
		} else if saveErr := s.repo.Save(ctx, order); saveErr != nil {
			logger.Ctx(ctx).Error().Err(saveErr).Int64("order_id", order.ID).
				Msg("failed to persist order cancellation after stock decrease failure")
		}
		ordersCreated.WithLabelValues(string(domain.StatusCancelled)).Inc()
		logger.Ctx(ctx).Error().Err(err).Int64("order_id", order.ID).Msg("order cancelled, stock decrease failed")
		return nil, fmt.Errorf("%w: %w", ErrOrderProcessingFailed, err)
	}

	if err := order.Confirm(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, order); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to persist order confirmation")
	}

	s.publishOrderCreated(ctx, order)
	ordersCreated.WithLabelValues(string(domain.StatusConfirmed)).Inc()
	logger.Ctx(ctx).Info().Int64("order_id", order.ID).Msg("order confirmed")
	span.AddEvent("order confirmed")
	return toResponse(order), nil
}

// createDegraded persists a PENDING order without any stock check and
// reports success. This is the saga's explicit fallback, not an error path.
func (s *OrderApplicationService) createDegraded(ctx context.Context, req *CreateOrderRequest) (*OrderResponse, error) {
	order, err := domain.NewOrder(req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, errors.Wrap(err, "failed to save degraded-path order")
	}
	s.publishOrderCreated(ctx, order)
	ordersCreated.WithLabelValues(string(domain.StatusPending)).Inc()
	return toResponse(order), nil
}

// publishOrderCreated emits the event for a persisted order. Failures are
// logged only: notification delivery never rolls back an order.
func (s *OrderApplicationService) publishOrderCreated(ctx context.Context, order *domain.Order) {
	event := domain.NewOrderCreatedEvent(order)
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Int64("order_id", order.ID).Msg("failed to publish order created event")
	}
}

// GetOrderByID returns one order's boundary view.
func (s *OrderApplicationService) GetOrderByID(ctx context.Context, id int64) (*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "order.GetOrderByID")
	defer span.End()

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(order), nil
}

// GetUserOrders lists a user's orders.
func (s *OrderApplicationService) GetUserOrders(ctx context.Context, userID int64) ([]*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "order.GetUserOrders")
	defer span.End()

	orders, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toResponses(orders), nil
}

// GetProductOrders lists the orders placed for a product.
func (s *OrderApplicationService) GetProductOrders(ctx context.Context, productID int64) ([]*OrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "order.GetProductOrders")
	defer span.End()

	orders, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toResponses(orders), nil
}

func toResponses(orders []*domain.Order) []*OrderResponse {
	responses := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		responses = append(responses, toResponse(o))
	}
	return responses
}
