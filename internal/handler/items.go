package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
)

// ItemManager is the item surface used by ItemHandler
type ItemManager interface {
	InventoryItemLister
	Create(ctx context.Context, caller *domain.User, in domain.ItemInput) (*domain.Item, error)
	GetByID(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Item, error)
	ListMine(ctx context.Context, caller *domain.User) ([]*domain.Item, error)
	ListLowStock(ctx context.Context, caller *domain.User) ([]*domain.Item, error)
	Update(ctx context.Context, caller *domain.User, id uuid.UUID, in domain.ItemQuantities) (*domain.Item, error)
	Patch(ctx context.Context, caller *domain.User, id uuid.UUID, patch domain.ItemPatch) (*domain.Item, error)
	Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error
	AdjustQuantity(ctx context.Context, caller *domain.User, id uuid.UUID, delta int) (*domain.Item, error)
}

// ItemHandler serves /api/items
type ItemHandler struct {
	items   ItemManager
	callers CallerResolver
	logger  *slog.Logger
}

func NewItemHandler(items ItemManager, callers CallerResolver, logger *slog.Logger) *ItemHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemHandler{items: items, callers: callers, logger: logger}
}

// Create handles POST /api/items
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := h.callers.CurrentCaller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req itemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	item, err := h.items.Create(r.Context(), caller, req.input())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemView(item))
}

// List handles GET /api/items
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.items.ListMine)
}

// LowStock handles GET /api/items/low-stock
func (h *ItemHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.items.ListLowStock)
}

func (h *ItemHandler) list(w http.ResponseWriter, r *http.Request, fetch func(context.Context, *domain.User) ([]*domain.Item, error)) {
	caller, err := h.callers.CurrentCaller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	items, err := fetch(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views(items, itemView))
}

// Get handles GET /api/items/{id}
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := resolveTarget(w, r, h.callers, h.logger)
	if !ok {
		return
	}
	item, err := h.items.GetByID(r.Context(), caller, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, itemView(item))
}

// Update handles PUT /api/items/{id}
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := resolveTarget(w, r, h.callers, h.logger)
	if !ok {
		return
	}
	var req itemQuantitiesRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	item, err := h.items.Update(r.Context(), caller, id, domain.ItemQuantities{
		CurrentQuantity:   *req.CurrentQuantity,
		MinimumStockLevel: *req.MinimumStockLevel,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, itemView(item))
}

// Patch handles PATCH /api/items/{id}
func (h *ItemHandler) Patch(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := resolveTarget(w, r, h.callers, h.logger)
	if !ok {
		return
	}
	var req itemPatchRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	item, err := h.items.Patch(r.Context(), caller, id, domain.ItemPatch{
		CurrentQuantity:   req.CurrentQuantity,
		MinimumStockLevel: req.MinimumStockLevel,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, itemView(item))
}

// Delete handles DELETE /api/items/{id}
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := resolveTarget(w, r, h.callers, h.logger)
	if !ok {
		return
	}
	if err := h.items.Delete(r.Context(), caller, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Adjust handles POST /api/items/{id}/adjust
func (h *ItemHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := resolveTarget(w, r, h.callers, h.logger)
	if !ok {
		return
	}
	var req adjustRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	item, err := h.items.AdjustQuantity(r.Context(), caller, id, *req.Delta)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, itemView(item))
}
