package domain

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// Order is the aggregate root of the order service. The ID and CreatedAt
// are assigned by the repository on first persist; CreatedAt never changes
// afterwards.
type Order struct {
	ID        int64
	UserID    int64
	ProductID int64
	Quantity  int
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder creates a PENDING order. Input validation beyond structural
// sanity belongs to the interfaces layer.
func NewOrder(userID, productID int64, quantity int) (*Order, error) {
	if userID <= 0 || productID <= 0 || quantity <= 0 {
		return nil, errors.New("cannot create order with empty required fields")
	}
	return &Order{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Status:    StatusPending,
	}, nil
}

// Confirm moves the order to CONFIRMED after the stock decrease succeeded.
func (o *Order) Confirm() error {
	return o.transition(StatusConfirmed)
}

// Cancel is the saga's compensating action when the stock decrease failed.
func (o *Order) Cancel() error {
	return o.transition(StatusCancelled)
}

func (o *Order) transition(target Status) error {
	if !o.Status.CanTransition(target) {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}
