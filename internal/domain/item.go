package domain

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
)

// MaxQuantity bounds stored quantities to the INTEGER columns
const MaxQuantity = math.MaxInt32

// Item is the stock record of one product inside one inventory.
// It has no owner of its own: whoever owns both the product and the
// inventory owns the item.
type Item struct {
	ID                uuid.UUID
	ProductID         uuid.UUID
	InventoryID       uuid.UUID
	CurrentQuantity   int
	MinimumStockLevel int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLowStock reports whether the quantity has fallen to or below the
// minimum stock level.
func (i *Item) IsLowStock() bool {
	return i.CurrentQuantity <= i.MinimumStockLevel
}

// ItemInput carries the fields for item creation
type ItemInput struct {
	ProductID         uuid.UUID
	InventoryID       uuid.UUID
	CurrentQuantity   int
	MinimumStockLevel int
}

// ItemQuantities carries the quantity fields for a full update
type ItemQuantities struct {
	CurrentQuantity   int
	MinimumStockLevel int
}

// ItemPatch carries a partial update of the quantity fields. Product and
// inventory references are never patched.
type ItemPatch struct {
	CurrentQuantity   Field[int]
	MinimumStockLevel Field[int]
}

// ItemTx is the storage view available while an item row is exclusively
// locked. It is only valid inside the callback passed to WithItemLock.
// Product and inventory reads run on the same transaction as the lock.
type ItemTx interface {
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Item, error)
	GetInventory(ctx context.Context, id uuid.UUID) (*Inventory, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
}

// ItemRepository defines data access for items
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	ListByInventory(ctx context.Context, inventoryID uuid.UUID) ([]*Item, error)
	ListByInventoryIDs(ctx context.Context, inventoryIDs []uuid.UUID) ([]*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountLowStock(ctx context.Context) (int, error)

	// WithItemLock runs fn in a transaction. Rows read through
	// tx.GetForUpdate stay locked until fn returns; the transaction commits
	// when fn returns nil and rolls back otherwise.
	//
	// The transaction holds one pool connection for the whole callback.
	// fn must read through tx only; any other repository call from inside
	// it takes a second connection and can stall on an exhausted pool.
	WithItemLock(ctx context.Context, fn func(tx ItemTx) error) error
}
