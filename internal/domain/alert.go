package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LowStockAlert describes an item whose quantity reached its minimum
// stock level after an adjustment.
type LowStockAlert struct {
	OwnerID           uuid.UUID `json:"ownerId"`
	InventoryID       uuid.UUID `json:"inventoryId"`
	InventoryName     string    `json:"inventoryName"`
	ItemID            uuid.UUID `json:"itemId"`
	ProductName       string    `json:"productName"`
	CurrentQuantity   int       `json:"currentQuantity"`
	MinimumStockLevel int       `json:"minimumStockLevel"`
	NotificationEmail string    `json:"-"`
	RaisedAt          time.Time `json:"raisedAt"`
}

// LowStockNotifier delivers low-stock alerts
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, alert LowStockAlert) error
}
