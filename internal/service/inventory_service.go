package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
	"github.com/aryan0dhankhar/stockroom/internal/security"
)

const (
	maxInventoryNameLength = 50
	maxDescriptionLength   = 200
)

// InventoryService handles inventory CRUD scoped to the owning user
type InventoryService struct {
	repo   domain.InventoryRepository
	authz  *security.Authorizer
	logger *slog.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(repo domain.InventoryRepository, authz *security.Authorizer, logger *slog.Logger) *InventoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryService{repo: repo, authz: authz, logger: logger}
}

// Create stores a new inventory owned by caller
func (s *InventoryService) Create(ctx context.Context, caller *domain.User, in domain.InventoryInput) (*domain.Inventory, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	inventory := &domain.Inventory{
		ID:      uuid.New(),
		OwnerID: caller.ID,
	}
	applyInventoryInput(inventory, in)
	if err := validateInventory(inventory); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, inventory); err != nil {
		return nil, fmt.Errorf("failed to create inventory: %w", err)
	}

	s.logger.Info("inventory created",
		slog.String("inventory_id", inventory.ID.String()),
		slog.String("owner_id", caller.ID.String()),
	)
	return inventory, nil
}

// GetByID returns an inventory the caller owns
func (s *InventoryService) GetByID(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Inventory, error) {
	return s.ValidateOwnership(ctx, caller, id)
}

// ListMine returns every inventory owned by caller
func (s *InventoryService) ListMine(ctx context.Context, caller *domain.User) ([]*domain.Inventory, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	inventories, err := s.repo.ListByOwner(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventories: %w", err)
	}
	return inventories, nil
}

// Update replaces every mutable field of the inventory. A missing
// description is stored as "".
func (s *InventoryService) Update(ctx context.Context, caller *domain.User, id uuid.UUID, in domain.InventoryInput) (*domain.Inventory, error) {
	inventory, err := s.ValidateOwnership(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	updated := *inventory
	applyInventoryInput(&updated, in)
	if err := validateInventory(&updated); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update inventory: %w", err)
	}
	return &updated, nil
}

// Patch overwrites only the fields present in the patch
func (s *InventoryService) Patch(ctx context.Context, caller *domain.User, id uuid.UUID, patch domain.InventoryPatch) (*domain.Inventory, error) {
	inventory, err := s.ValidateOwnership(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	updated := *inventory
	changed := patch.Name.ApplyTo(&updated.Name)
	changed = patch.Description.ApplyClearableTo(&updated.Description) || changed
	changed = patch.NotificationEmail.ApplyTo(&updated.NotificationEmail) || changed
	if !changed {
		return inventory, nil
	}

	updated.Name = strings.TrimSpace(updated.Name)
	updated.Description = strings.TrimSpace(updated.Description)
	updated.NotificationEmail = strings.TrimSpace(updated.NotificationEmail)
	if err := validateInventory(&updated); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to patch inventory: %w", err)
	}
	return &updated, nil
}

// Delete removes an inventory the caller owns
func (s *InventoryService) Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error {
	if _, err := s.ValidateOwnership(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete inventory: %w", err)
	}
	s.logger.Info("inventory deleted", slog.String("inventory_id", id.String()))
	return nil
}

// ValidateOwnership loads the inventory and checks the caller owns it
func (s *InventoryService) ValidateOwnership(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Inventory, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	inventory, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateOwnership(caller, security.ResourceInventory, inventory.ID, inventory.OwnerID); err != nil {
		return nil, err
	}
	return inventory, nil
}

func applyInventoryInput(inventory *domain.Inventory, in domain.InventoryInput) {
	inventory.Name = strings.TrimSpace(in.Name)
	inventory.Description = ""
	if in.Description != nil {
		inventory.Description = strings.TrimSpace(*in.Description)
	}
	inventory.NotificationEmail = strings.TrimSpace(in.NotificationEmail)
}

func validateInventory(inventory *domain.Inventory) error {
	if inventory.Name == "" {
		return domain.Validationf("name must not be blank")
	}
	if utf8.RuneCountInString(inventory.Name) > maxInventoryNameLength {
		return domain.Validationf("name must be at most %d characters", maxInventoryNameLength)
	}
	if utf8.RuneCountInString(inventory.Description) > maxDescriptionLength {
		return domain.Validationf("description must be at most %d characters", maxDescriptionLength)
	}
	return validateEmail("notification email", inventory.NotificationEmail)
}
