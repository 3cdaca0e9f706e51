package adapter

import (
	"context"
	"fmt"

	"bazaar/internal/pkg/httpclient"
	"bazaar/internal/service/aggregation/port"
)

const inventoryServiceName = "inventory-service"

// InventoryHTTPAdapter implements port.InventoryService against the
// inventory service's REST API.
type InventoryHTTPAdapter struct {
	client *httpclient.Client
}

func NewInventoryHTTPAdapter(client *httpclient.Client) *InventoryHTTPAdapter {
	return &InventoryHTTPAdapter{client: client}
}

func (a *InventoryHTTPAdapter) GetInventory(ctx context.Context, productID int64) (*port.InventoryInfo, error) {
	var info port.InventoryInfo
	if err := a.client.GetJSON(ctx, inventoryServiceName, fmt.Sprintf("/api/inventory/%d", productID), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
