package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is a catalogue entry owned by a single user
type Product struct {
	ID           uuid.UUID
	Name         string
	SupplierCode string // Empty when the product has no supplier code
	OwnerID      uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProductInput carries the mutable fields for create and full update
type ProductInput struct {
	Name         string
	SupplierCode string
}

// ProductPatch carries a partial update. SupplierCode may be cleared;
// a null Name is treated as omitted since the column is required.
type ProductPatch struct {
	Name         Field[string]
	SupplierCode Field[string]
}

// ProductRepository defines data access for products
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Product, error)
	ExistsByNameAndSupplierCode(ctx context.Context, name, supplierCode string) (bool, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}
