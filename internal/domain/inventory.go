package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Inventory is a named stock location owned by a single user
type Inventory struct {
	ID                uuid.UUID
	Name              string
	Description       string // Normalized to "" when absent
	NotificationEmail string // Recipient of low-stock alerts
	OwnerID           uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// InventoryInput carries the mutable fields for create and full update.
// A nil Description is stored as "".
type InventoryInput struct {
	Name              string
	Description       *string
	NotificationEmail string
}

// InventoryPatch carries a partial update
type InventoryPatch struct {
	Name              Field[string]
	Description       Field[string]
	NotificationEmail Field[string]
}

// InventoryRepository defines data access for inventories
type InventoryRepository interface {
	Create(ctx context.Context, inventory *Inventory) error
	GetByID(ctx context.Context, id uuid.UUID) (*Inventory, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Inventory, error)
	Update(ctx context.Context, inventory *Inventory) error
	Delete(ctx context.Context, id uuid.UUID) error
}
