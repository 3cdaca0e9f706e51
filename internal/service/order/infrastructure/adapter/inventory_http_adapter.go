package adapter

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"bazaar/internal/pkg/httpclient"
	"bazaar/internal/service/order/port"
)

const (
	inventoryServiceName = "inventory-service"

	checkAvailabilityPath = "/api/inventory/check-availability"
	decreaseStockPath     = "/api/inventory/decrease"
)

// InventoryHTTPAdapter implements port.InventoryService against the
// inventory service's HTTP endpoints. One attempt per call; the breakers
// in the application layer decide whether a call happens at all.
type InventoryHTTPAdapter struct {
	client *httpclient.Client
}

func NewInventoryHTTPAdapter(client *httpclient.Client) *InventoryHTTPAdapter {
	return &InventoryHTTPAdapter{client: client}
}

func (a *InventoryHTTPAdapter) CheckAvailability(ctx context.Context, productID int64, quantity int) error {
	params := url.Values{}
	params.Set("productId", strconv.FormatInt(productID, 10))
	params.Set("requiredQuantity", strconv.Itoa(quantity))
	return a.client.PostForm(ctx, inventoryServiceName, checkAvailabilityPath, params)
}

func (a *InventoryHTTPAdapter) DecreaseStock(ctx context.Context, productID int64, quantity int) error {
	params := url.Values{}
	params.Set("productId", strconv.FormatInt(productID, 10))
	params.Set("quantity", strconv.Itoa(quantity))

	err := a.client.PostForm(ctx, inventoryServiceName, decreaseStockPath, params)
	if err == nil {
		return nil
	}
	// 409 is the inventory service's business rejection, not an outage.
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusConflict {
		return errors.Wrapf(port.ErrInsufficientStock, "product %d", productID)
	}
	return err
}
