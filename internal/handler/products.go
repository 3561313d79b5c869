package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
)

// ProductManager is the product surface used by ProductHandler
type ProductManager interface {
	Create(ctx context.Context, caller *domain.User, in domain.ProductInput) (*domain.Product, error)
	GetByID(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Product, error)
	ListMine(ctx context.Context, caller *domain.User) ([]*domain.Product, error)
	Update(ctx context.Context, caller *domain.User, id uuid.UUID, in domain.ProductInput) (*domain.Product, error)
	Patch(ctx context.Context, caller *domain.User, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error
}

// ProductHandler serves /api/products
type ProductHandler struct {
	products ProductManager
	callers  CallerResolver
	logger   *slog.Logger
}

func NewProductHandler(products ProductManager, callers CallerResolver, logger *slog.Logger) *ProductHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductHandler{products: products, callers: callers, logger: logger}
}

// Create handles POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := h.callers.CurrentCaller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req productRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	product, err := h.products.Create(r.Context(), caller, req.input())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, productView(product))
}

// List handles GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := h.callers.CurrentCaller(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	products, err := h.products.ListMine(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views(products, productView))
}

// Get handles GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := resolveTarget(w, r, h.callers, h.logger)
	if !ok {
		return
	}
	product, err := h.products.GetByID(r.Context(), caller, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, productView(product))
}

// Update handles PUT /api/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := resolveTarget(w, r, h.callers, h.logger)
	if !ok {
		return
	}
	var req productRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	product, err := h.products.Update(r.Context(), caller, id, req.input())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, productView(product))
}

// Patch handles PATCH /api/products/{id}
func (h *ProductHandler) Patch(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := resolveTarget(w, r, h.callers, h.logger)
	if !ok {
		return
	}
	var req productPatchRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	product, err := h.products.Patch(r.Context(), caller, id, domain.ProductPatch{
		Name:         req.Name,
		SupplierCode: req.SupplierCode,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, productView(product))
}

// Delete handles DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := resolveTarget(w, r, h.callers, h.logger)
	if !ok {
		return
	}
	if err := h.products.Delete(r.Context(), caller, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolveTarget loads the caller and parses the {id} path segment,
// writing the error response when either fails
func resolveTarget(w http.ResponseWriter, r *http.Request, callers CallerResolver, logger *slog.Logger) (*domain.User, uuid.UUID, bool) {
	caller, err := callers.CurrentCaller(r.Context())
	if err != nil {
		writeError(w, logger, err)
		return nil, uuid.Nil, false
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, logger, err)
		return nil, uuid.Nil, false
	}
	return caller, id, true
}
