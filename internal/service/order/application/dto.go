package application

import "bazaar/internal/service/order/domain"

// CreateOrderRequest is the application-layer command for order creation.
// The interfaces layer validates it before handing it over.
type CreateOrderRequest struct {
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// OrderResponse is the boundary shape returned to callers. The CANCELLED
// record of a failed saga is never returned, only the error.
type OrderResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Status    string `json:"status"`
}

func toResponse(o *domain.Order) *OrderResponse {
	return &OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
		Status:    string(o.Status),
	}
}
