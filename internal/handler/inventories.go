package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
)

// InventoryManager is the inventory surface used by InventoryHandler
type InventoryManager interface {
	Create(ctx context.Context, caller *domain.User, in domain.InventoryInput) (*domain.Inventory, error)
	GetByID(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Inventory, error)
	ListMine(ctx context.Context, caller *domain.User) ([]*domain.Inventory, error)
	Update(ctx context.Context, caller *domain.User, id uuid.UUID, in domain.InventoryInput) (*domain.Inventory, error)
	Patch(ctx context.Context, caller *domain.User, id uuid.UUID, patch domain.InventoryPatch) (*domain.Inventory, error)
	Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error
}

// InventoryItemLister lists the items stored in one inventory
type InventoryItemLister interface {
	ListByInventory(ctx context.Context, caller *domain.User, inventoryID uuid.UUID) ([]*domain.Item, error)
}

// InventoryHandler serves /api/inventories
type InventoryHandler struct {
	inventories InventoryManager
	items       InventoryItemLister
	callers     CallerResolver
	logger      *slog.Logger
}

func NewInventoryHandler(inventories InventoryManager, items InventoryItemLister, callers CallerResolver, logger *slog.Logger) *InventoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryHandler{inventories: inventories, items: items, callers: callers, logger: logger}
}

// Create handles POST /api/inventories
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := h.callers.CurrentCaller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req inventoryRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	inventory, err := h.inventories.Create(r.Context(), caller, req.input())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, inventoryView(inventory))
}

// List handles GET /api/inventories
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := h.callers.CurrentCaller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	inventories, err := h.inventories.ListMine(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views(inventories, inventoryView))
}

// Get handles GET /api/inventories/{id}
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := resolveTarget(w, r, h.callers, h.logger)
	if !ok {
		return
	}
	inventory, err := h.inventories.GetByID(r.Context(), caller, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, inventoryView(inventory))
}

// Items handles GET /api/inventories/{id}/items
func (h *InventoryHandler) Items(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := resolveTarget(w, r, h.callers, h.logger)
	if !ok {
		return
	}
	items, err := h.items.ListByInventory(r.Context(), caller, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views(items, itemView))
}

// Update handles PUT /api/inventories/{id}
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := resolveTarget(w, r, h.callers, h.logger)
	if !ok {
		return
	}
	var req inventoryRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	inventory, err := h.inventories.Update(r.Context(), caller, id, req.input())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, inventoryView(inventory))
}

// Patch handles PATCH /api/inventories/{id}
func (h *InventoryHandler) Patch(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := resolveTarget(w, r, h.callers, h.logger)
	if !ok {
		return
	}
	var req inventoryPatchRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	inventory, err := h.inventories.Patch(r.Context(), caller, id, domain.InventoryPatch{
		Name:              req.Name,
		Description:       req.Description,
		NotificationEmail: req.NotificationEmail,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, inventoryView(inventory))
}

// Delete handles DELETE /api/inventories/{id}
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := resolveTarget(w, r, h.callers, h.logger)
	if !ok {
		return
	}
	if err := h.inventories.Delete(r.Context(), caller, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
