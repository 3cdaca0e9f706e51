package domain

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrInventoryNotFound  = errors.New("inventory not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrNegativeQuantity   = errors.New("quantity must not be negative")
)

// Inventory is the stock counter for one product.
type Inventory struct {
	ID        int64
	ProductID int64
	Quantity  int
}

// Available reports whether any stock is left.
func (i *Inventory) Available() bool { return i.Quantity > 0 }

// Decrease debits quantity units, rejecting oversell.
func (i *Inventory) Decrease(quantity int) error {
	if quantity < 0 {
		return ErrNegativeQuantity
	}
	if i.Quantity < quantity {
		return errors.Wrapf(ErrInsufficientStock, "product %d has %d, requested %d", i.ProductID, i.Quantity, quantity)
	}
	i.Quantity -= quantity
	return nil
}

// InventoryRepository is the persistence port for stock counters.
type InventoryRepository interface {
	FindByProductID(ctx context.Context, productID int64) (*Inventory, error)
	Save(ctx context.Context, inventory *Inventory) error
}
