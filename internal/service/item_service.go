package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
	"github.com/aryan0dhankhar/stockroom/internal/observability/metrics"
	"github.com/aryan0dhankhar/stockroom/internal/security"
)

// ProductOwnershipValidator resolves a product the caller owns
type ProductOwnershipValidator interface {
	ValidateOwnership(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Product, error)
}

// InventoryOwnershipValidator resolves inventories the caller owns
type InventoryOwnershipValidator interface {
	ValidateOwnership(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Inventory, error)
	ListMine(ctx context.Context, caller *domain.User) ([]*domain.Inventory, error)
}

// ItemService manages items and stock adjustments. Items carry no owner;
// every operation checks the caller owns both the product and the inventory.
type ItemService struct {
	repo        domain.ItemRepository
	products    ProductOwnershipValidator
	inventories InventoryOwnershipValidator
	authz       *security.Authorizer
	notifier    domain.LowStockNotifier
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewItemService creates a new item service. A nil notifier disables
// low-stock alerts.
func NewItemService(
	repo domain.ItemRepository,
	products ProductOwnershipValidator,
	inventories InventoryOwnershipValidator,
	authz *security.Authorizer,
	notifier domain.LowStockNotifier,
	logger *slog.Logger,
) *ItemService {
	if logger == nil {
		logger = slog.Default()
	}
	if authz == nil {
		authz = security.NewAuthorizer(logger)
	}
	return &ItemService{
		repo:        repo,
		products:    products,
		inventories: inventories,
		authz:       authz,
		notifier:    notifier,
		logger:      logger,
		tracer:      otel.Tracer("stockroom/service/items"),
	}
}

// Create stores a new item after checking the caller owns the referenced
// product and inventory. Several items may reference the same pair.
func (s *ItemService) Create(ctx context.Context, caller *domain.User, in domain.ItemInput) (*domain.Item, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := validateQuantities(in.CurrentQuantity, in.MinimumStockLevel); err != nil {
		return nil, err
	}
	if _, err := s.products.ValidateOwnership(ctx, caller, in.ProductID); err != nil {
		return nil, err
	}
	if _, err := s.inventories.ValidateOwnership(ctx, caller, in.InventoryID); err != nil {
		return nil, err
	}

	item := &domain.Item{
		ID:                uuid.New(),
		ProductID:         in.ProductID,
		InventoryID:       in.InventoryID,
		CurrentQuantity:   in.CurrentQuantity,
		MinimumStockLevel: in.MinimumStockLevel,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.Info("item created",
		slog.String("item_id", item.ID.String()),
		slog.String("inventory_id", item.InventoryID.String()),
	)
	return item, nil
}

// GetByID returns an item the caller transitively owns
func (s *ItemService) GetByID(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Item, error) {
	item, _, _, err := s.load(ctx, caller, id)
	return item, err
}

// ListMine returns the items of every inventory the caller owns
func (s *ItemService) ListMine(ctx context.Context, caller *domain.User) ([]*domain.Item, error) {
	inventories, err := s.inventories.ListMine(ctx, caller)
	if err != nil {
		return nil, err
	}
	if len(inventories) == 0 {
		return []*domain.Item{}, nil
	}
	ids := make([]uuid.UUID, 0, len(inventories))
	for _, inv := range inventories {
		ids = append(ids, inv.ID)
	}
	items, err := s.repo.ListByInventoryIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// ListByInventory returns the items of one inventory the caller owns
func (s *ItemService) ListByInventory(ctx context.Context, caller *domain.User, inventoryID uuid.UUID) ([]*domain.Item, error) {
	if _, err := s.inventories.ValidateOwnership(ctx, caller, inventoryID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByInventory(ctx, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// ListLowStock returns the caller's items at or below their minimum level
func (s *ItemService) ListLowStock(ctx context.Context, caller *domain.User) ([]*domain.Item, error) {
	items, err := s.ListMine(ctx, caller)
	if err != nil {
		return nil, err
	}
	low := make([]*domain.Item, 0)
	for _, item := range items {
		if item.IsLowStock() {
			low = append(low, item)
		}
	}
	return low, nil
}

// Update replaces both quantity fields. It is an administrative correction:
// no low-stock alert is raised.
func (s *ItemService) Update(ctx context.Context, caller *domain.User, id uuid.UUID, in domain.ItemQuantities) (*domain.Item, error) {
	item, _, _, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := validateQuantities(in.CurrentQuantity, in.MinimumStockLevel); err != nil {
		return nil, err
	}

	updated := *item
	updated.CurrentQuantity = in.CurrentQuantity
	updated.MinimumStockLevel = in.MinimumStockLevel
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return &updated, nil
}

// Patch overwrites the quantity fields present in the patch. Null is
// treated as omitted since both columns are required.
func (s *ItemService) Patch(ctx context.Context, caller *domain.User, id uuid.UUID, patch domain.ItemPatch) (*domain.Item, error) {
	item, _, _, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	updated := *item
	changed := patch.CurrentQuantity.ApplyTo(&updated.CurrentQuantity)
	changed = patch.MinimumStockLevel.ApplyTo(&updated.MinimumStockLevel) || changed
	if !changed {
		return item, nil
	}
	if err := validateQuantities(updated.CurrentQuantity, updated.MinimumStockLevel); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to patch item: %w", err)
	}
	return &updated, nil
}

// Delete removes an item the caller transitively owns
func (s *ItemService) Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error {
	if _, _, _, err := s.load(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	s.logger.Info("item deleted", slog.String("item_id", id.String()))
	return nil
}

// AdjustQuantity adds delta to the item's quantity while holding an
// exclusive lock on the row. A result below zero fails with
// *domain.InsufficientStockError and writes nothing. Once committed, a
// quantity at or below the minimum level raises a low-stock alert; alert
// failures are logged and never returned.
//
// Ownership of the inventory, then the product, is confirmed with the lock
// held, reading through the locking transaction.
func (s *ItemService) AdjustQuantity(ctx context.Context, caller *domain.User, id uuid.UUID, delta int) (*domain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "ItemService.AdjustQuantity", trace.WithAttributes(
		attribute.String("item.id", id.String()),
		attribute.Int("stock.delta", delta),
	))
	defer span.End()
	start := time.Now()

	adjusted, inventory, product, err := s.adjust(ctx, caller, id, delta)
	if err != nil {
		metrics.ObserveAdjustment(adjustmentResult(err), time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	metrics.ObserveAdjustment("success", time.Since(start))
	span.SetAttributes(attribute.Int("stock.quantity", adjusted.CurrentQuantity))

	s.logger.Info("stock adjusted",
		slog.String("item_id", adjusted.ID.String()),
		slog.Int("delta", delta),
		slog.Int("quantity", adjusted.CurrentQuantity),
	)

	if adjusted.IsLowStock() {
		span.AddEvent("low_stock")
		s.raiseLowStock(ctx, caller, adjusted, inventory, product)
	}
	return adjusted, nil
}

func (s *ItemService) adjust(ctx context.Context, caller *domain.User, id uuid.UUID, delta int) (*domain.Item, *domain.Inventory, *domain.Product, error) {
	if err := requireCaller(caller); err != nil {
		return nil, nil, nil, err
	}
	if delta < -domain.MaxQuantity || delta > domain.MaxQuantity {
		return nil, nil, nil, domain.Validationf("delta must be between %d and %d", -domain.MaxQuantity, domain.MaxQuantity)
	}

	var (
		adjusted  *domain.Item
		inventory *domain.Inventory
		product   *domain.Product
	)
	err := s.repo.WithItemLock(ctx, func(tx domain.ItemTx) error {
		item, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inventory, err = tx.GetInventory(ctx, item.InventoryID); err != nil {
			return err
		}
		if err := s.authz.ValidateOwnership(caller, security.ResourceInventory, inventory.ID, inventory.OwnerID); err != nil {
			return err
		}
		if product, err = tx.GetProduct(ctx, item.ProductID); err != nil {
			return err
		}
		if err := s.authz.ValidateOwnership(caller, security.ResourceProduct, product.ID, product.OwnerID); err != nil {
			return err
		}

		newQuantity := item.CurrentQuantity + delta
		if newQuantity < 0 {
			return &domain.InsufficientStockError{
				ProductName:     product.Name,
				CurrentQuantity: item.CurrentQuantity,
				Delta:           delta,
			}
		}
		if newQuantity > domain.MaxQuantity {
			return domain.Validationf("resulting quantity must be at most %d", domain.MaxQuantity)
		}
		if delta != 0 {
			if err := tx.UpdateQuantity(ctx, item.ID, newQuantity); err != nil {
				return fmt.Errorf("failed to write quantity: %w", err)
			}
		}
		item.CurrentQuantity = newQuantity
		adjusted = item
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return adjusted, inventory, product, nil
}

func (s *ItemService) raiseLowStock(ctx context.Context, caller *domain.User, item *domain.Item, inventory *domain.Inventory, product *domain.Product) {
	if s.notifier == nil {
		return
	}
	alert := domain.LowStockAlert{
		OwnerID:           caller.ID,
		InventoryID:       inventory.ID,
		InventoryName:     inventory.Name,
		ItemID:            item.ID,
		ProductName:       product.Name,
		CurrentQuantity:   item.CurrentQuantity,
		MinimumStockLevel: item.MinimumStockLevel,
		NotificationEmail: inventory.NotificationEmail,
		RaisedAt:          time.Now().UTC(),
	}
	if err := s.notifier.NotifyLowStock(ctx, alert); err != nil {
		s.logger.Error("failed to raise low-stock alert",
			slog.String("item_id", item.ID.String()),
			slog.String("error", err.Error()),
		)
		metrics.ObserveAlert("dispatch", "error")
	}
}

// load resolves an item and checks ownership of its inventory, then its
// product. A missing item is reported before any ownership failure.
func (s *ItemService) load(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Item, *domain.Inventory, *domain.Product, error) {
	if err := requireCaller(caller); err != nil {
		return nil, nil, nil, err
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	inventory, err := s.inventories.ValidateOwnership(ctx, caller, item.InventoryID)
	if err != nil {
		return nil, nil, nil, err
	}
	product, err := s.products.ValidateOwnership(ctx, caller, item.ProductID)
	if err != nil {
		return nil, nil, nil, err
	}
	return item, inventory, product, nil
}

func adjustmentResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case domain.IsNotFound(err):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
