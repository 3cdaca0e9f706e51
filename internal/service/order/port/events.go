package port

import (
	"context"

	"bazaar/internal/service/order/domain"
)

// EventPublisher is the outbound port for order-created events. Delivery is
// fire-and-forget from the saga's point of view: a publish failure is
// logged, never rolled back into the order.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *domain.OrderCreatedEvent) error
}
