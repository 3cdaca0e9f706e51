package port

import (
	"context"

	"github.com/pkg/errors"
)

var ErrProductNotFound = errors.New("product not found")

// ProductInfo is the catalog projection the aggregator composes from.
type ProductInfo struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// ProductService fetches catalog data from the product service.
type ProductService interface {
	GetProduct(ctx context.Context, productID int64) (*ProductInfo, error)
}
