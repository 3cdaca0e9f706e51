package port

import "context"

// InventoryInfo is the stock projection the aggregator composes from.
type InventoryInfo struct {
	Quantity  int  `json:"quantity"`
	Available bool `json:"available"`
}

// InventoryService fetches stock data from the inventory service.
type InventoryService interface {
	GetInventory(ctx context.Context, productID int64) (*InventoryInfo, error)
}
