package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
)

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type productRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	SupplierCode *string `json:"supplierCode" validate:"omitempty,max=100"`
}

func (r productRequest) input() domain.ProductInput {
	in := domain.ProductInput{Name: r.Name}
	if r.SupplierCode != nil {
		in.SupplierCode = *r.SupplierCode
	}
	return in
}

type productPatchRequest struct {
	Name         domain.Field[string] `json:"name"`
	SupplierCode domain.Field[string] `json:"supplierCode"`
}

type productResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	SupplierCode *string   `json:"supplierCode"`
	OwnerID      uuid.UUID `json:"ownerId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func productView(p *domain.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		SupplierCode: optional(p.SupplierCode),
		OwnerID:      p.OwnerID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type inventoryRequest struct {
	Name              string  `json:"name" validate:"required,max=50"`
	Description       *string `json:"description" validate:"omitempty,max=200"`
	NotificationEmail string  `json:"notificationEmail" validate:"required,email,max=254"`
}

func (r inventoryRequest) input() domain.InventoryInput {
	return domain.InventoryInput{
		Name:              r.Name,
		Description:       r.Description,
		NotificationEmail: r.NotificationEmail,
	}
}

type inventoryPatchRequest struct {
	Name              domain.Field[string] `json:"name"`
	Description       domain.Field[string] `json:"description"`
	NotificationEmail domain.Field[string] `json:"notificationEmail"`
}

type inventoryResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	NotificationEmail string    `json:"notificationEmail"`
	OwnerID           uuid.UUID `json:"ownerId"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func inventoryView(i *domain.Inventory) inventoryResponse {
	return inventoryResponse{
		ID:                i.ID,
		Name:              i.Name,
		Description:       i.Description,
		NotificationEmail: i.NotificationEmail,
		OwnerID:           i.OwnerID,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}

type itemRequest struct {
	ProductID         uuid.UUID `json:"productId" validate:"required"`
	InventoryID       uuid.UUID `json:"inventoryId" validate:"required"`
	CurrentQuantity   *int      `json:"currentQuantity" validate:"required,min=0,max=2147483647"`
	MinimumStockLevel *int      `json:"minimumStockLevel" validate:"required,min=0,max=2147483647"`
}

func (r itemRequest) input() domain.ItemInput {
	return domain.ItemInput{
		ProductID:         r.ProductID,
		InventoryID:       r.InventoryID,
		CurrentQuantity:   *r.CurrentQuantity,
		MinimumStockLevel: *r.MinimumStockLevel,
	}
}

type itemQuantitiesRequest struct {
	CurrentQuantity   *int `json:"currentQuantity" validate:"required,min=0,max=2147483647"`
	MinimumStockLevel *int `json:"minimumStockLevel" validate:"required,min=0,max=2147483647"`
}

type itemPatchRequest struct {
	CurrentQuantity   domain.Field[int] `json:"currentQuantity"`
	MinimumStockLevel domain.Field[int] `json:"minimumStockLevel"`
}

type adjustRequest struct {
	Delta *int `json:"delta" validate:"required,min=-2147483647,max=2147483647"`
}

type itemResponse struct {
	ID                uuid.UUID `json:"id"`
	ProductID         uuid.UUID `json:"productId"`
	InventoryID       uuid.UUID `json:"inventoryId"`
	CurrentQuantity   int       `json:"currentQuantity"`
	MinimumStockLevel int       `json:"minimumStockLevel"`
	LowStock          bool      `json:"lowStock"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func itemView(i *domain.Item) itemResponse {
	return itemResponse{
		ID:                i.ID,
		ProductID:         i.ProductID,
		InventoryID:       i.InventoryID,
		CurrentQuantity:   i.CurrentQuantity,
		MinimumStockLevel: i.MinimumStockLevel,
		LowStock:          i.IsLowStock(),
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}

func views[T, V any](in []T, view func(T) V) []V {
	out := make([]V, 0, len(in))
	for _, v := range in {
		out = append(out, view(v))
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
