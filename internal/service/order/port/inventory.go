package port

import (
	"context"

	"github.com/pkg/errors"
)

// ErrInsufficientStock is the business rejection reported by the decrease
// capability; it is not a transient fault and must not be retried.
var ErrInsufficientStock = errors.New("insufficient stock")

// InventoryService is the outbound port for the two inventory capabilities
// the order saga consumes. Implementations perform a single attempt per
// call; retry policy, if any, lives in the transport.
type InventoryService interface {
	// CheckAvailability verifies the product's inventory record is
	// reachable. It does not reserve anything.
	CheckAvailability(ctx context.Context, productID int64, quantity int) error

	// DecreaseStock debits quantity units, failing with
	// ErrInsufficientStock when the product cannot cover it.
	DecreaseStock(ctx context.Context, productID int64, quantity int) error
}
