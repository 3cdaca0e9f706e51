package adapter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"bazaar/internal/pkg/httpclient"
	"bazaar/internal/service/aggregation/port"
)

const productServiceName = "product-service"

// ProductHTTPAdapter implements port.ProductService against the product
// service's REST API.
type ProductHTTPAdapter struct {
	client *httpclient.Client
}

func NewProductHTTPAdapter(client *httpclient.Client) *ProductHTTPAdapter {
	return &ProductHTTPAdapter{client: client}
}

func (a *ProductHTTPAdapter) GetProduct(ctx context.Context, productID int64) (*port.ProductInfo, error) {
	var info port.ProductInfo
	err := a.client.GetJSON(ctx, productServiceName, fmt.Sprintf("/api/products/%d", productID), nil, &info)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, port.ErrProductNotFound
		}
		return nil, err
	}
	return &info, nil
}
