package domain

import (
	"fmt"
	"time"
)

// OrderCreatedEvent is the notification service's view of the payload
// published on the order-events topic.
type OrderCreatedEvent struct {
	OrderID   int64     `json:"orderId"`
	UserID    int64     `json:"userId"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message renders the human-readable notification text.
func (e *OrderCreatedEvent) Message() string {
	return fmt.Sprintf(
		"Order Notification: Order #%d has been %s. Product ID: %d, Quantity: %d, User ID: %d, Created: %s",
		e.OrderID, e.Status, e.ProductID, e.Quantity, e.UserID, e.CreatedAt.Format(time.RFC3339),
	)
}
