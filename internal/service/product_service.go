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
	maxProductNameLength  = 100
	maxSupplierCodeLength = 100
)

// ProductService handles product CRUD scoped to the owning user
type ProductService struct {
	repo   domain.ProductRepository
	authz  *security.Authorizer
	logger *slog.Logger
}

// NewProductService creates a new product service
func NewProductService(repo domain.ProductRepository, authz *security.Authorizer, logger *slog.Logger) *ProductService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductService{repo: repo, authz: authz, logger: logger}
}

// Create stores a new product owned by caller. The (name, supplier code)
// pair must be unique across all users.
func (s *ProductService) Create(ctx context.Context, caller *domain.User, in domain.ProductInput) (*domain.Product, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.SupplierCode = strings.TrimSpace(in.SupplierCode)
	if err := validateProduct(in.Name, in.SupplierCode); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, in.Name, in.SupplierCode); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:           uuid.New(),
		Name:         in.Name,
		SupplierCode: in.SupplierCode,
		OwnerID:      caller.ID,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("product created",
		slog.String("product_id", product.ID.String()),
		slog.String("owner_id", caller.ID.String()),
	)
	return product, nil
}

// GetByID returns a product the caller owns
func (s *ProductService) GetByID(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Product, error) {
	return s.ValidateOwnership(ctx, caller, id)
}

// ListMine returns every product owned by caller
func (s *ProductService) ListMine(ctx context.Context, caller *domain.User) ([]*domain.Product, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	products, err := s.repo.ListByOwner(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Update replaces every mutable field of the product
func (s *ProductService) Update(ctx context.Context, caller *domain.User, id uuid.UUID, in domain.ProductInput) (*domain.Product, error) {
	product, err := s.ValidateOwnership(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.SupplierCode = strings.TrimSpace(in.SupplierCode)
	if err := validateProduct(in.Name, in.SupplierCode); err != nil {
		return nil, err
	}
	if in.Name != product.Name || in.SupplierCode != product.SupplierCode {
		if err := s.ensureUnique(ctx, in.Name, in.SupplierCode); err != nil {
			return nil, err
		}
	}

	product.Name = in.Name
	product.SupplierCode = in.SupplierCode
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// Patch overwrites only the fields present in the patch. An empty patch
// performs no write.
func (s *ProductService) Patch(ctx context.Context, caller *domain.User, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	product, err := s.ValidateOwnership(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	name, code := product.Name, product.SupplierCode
	changed := patch.Name.ApplyTo(&name)
	changed = patch.SupplierCode.ApplyClearableTo(&code) || changed
	if !changed {
		return product, nil
	}
	name, code = strings.TrimSpace(name), strings.TrimSpace(code)
	if err := validateProduct(name, code); err != nil {
		return nil, err
	}
	if name != product.Name || code != product.SupplierCode {
		if err := s.ensureUnique(ctx, name, code); err != nil {
			return nil, err
		}
	}

	product.Name, product.SupplierCode = name, code
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to patch product: %w", err)
	}
	return product, nil
}

// Delete removes a product the caller owns
func (s *ProductService) Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error {
	if _, err := s.ValidateOwnership(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.logger.Info("product deleted", slog.String("product_id", id.String()))
	return nil
}

// ValidateOwnership loads the product and checks the caller owns it.
// A missing product is reported before an ownership mismatch.
func (s *ProductService) ValidateOwnership(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Product, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateOwnership(caller, security.ResourceProduct, product.ID, product.OwnerID); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) ensureUnique(ctx context.Context, name, supplierCode string) error {
	exists, err := s.repo.ExistsByNameAndSupplierCode(ctx, name, supplierCode)
	if err != nil {
		return fmt.Errorf("failed to check product uniqueness: %w", err)
	}
	if exists {
		return domain.ErrProductAlreadyExists
	}
	return nil
}

func validateProduct(name, supplierCode string) error {
	if name == "" {
		return domain.Validationf("name must not be blank")
	}
	if utf8.RuneCountInString(name) > maxProductNameLength {
		return domain.Validationf("name must be at most %d characters", maxProductNameLength)
	}
	if utf8.RuneCountInString(supplierCode) > maxSupplierCodeLength {
		return domain.Validationf("supplier code must be at most %d characters", maxSupplierCodeLength)
	}
	return nil
}

func requireCaller(caller *domain.User) error {
	if caller == nil {
		return domain.ErrNotAuthenticated
	}
	return nil
}
