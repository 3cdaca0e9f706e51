package domain

import (
	"context"

	"github.com/pkg/errors"
)

var ErrProductNotFound = errors.New("product not found")

// Product is a catalog entry.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// ProductRepository is the persistence port of the catalog.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
	FindByCategory(ctx context.Context, category string) ([]*Product, error)
	SearchByName(ctx context.Context, name string) ([]*Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id int64) error
}
