package domain

import "context"

// OrderRepository is the persistence port of the order aggregate,
// implemented by the infrastructure layer.
type OrderRepository interface {
	// Save inserts the order when its ID is zero (assigning ID and
	// CreatedAt) and updates it otherwise.
	Save(ctx context.Context, order *Order) error

	FindByID(ctx context.Context, id int64) (*Order, error)
	FindByUserID(ctx context.Context, userID int64) ([]*Order, error)
	FindByProductID(ctx context.Context, productID int64) ([]*Order, error)
}
