package domain

import "time"

// OrderCreatedEvent is a read-only projection of a persisted order,
// published at most once per saga: for a CONFIRMED order or for the
// degraded-path PENDING order. Cancelled orders never produce one.
type OrderCreatedEvent struct {
	OrderID   int64     `json:"orderId"`
	UserID    int64     `json:"userId"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewOrderCreatedEvent projects a persisted order into its event.
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		OrderID:   o.ID,
		UserID:    o.UserID,
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}
