package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
	"github.com/aryan0dhankhar/stockroom/internal/security"
)

func newUser(email string) *domain.User {
	return &domain.User{ID: uuid.New(), Email: email, Roles: []domain.Role{domain.RoleUser}}
}

func newTestProductService() (*ProductService, *memProductRepo) {
	repo := newMemProductRepo()
	return NewProductService(repo, security.NewAuthorizer(nil), nil), repo
}

func TestProductCreateAndGet(t *testing.T) {
	s, _ := newTestProductService()
	ctx := context.Background()
	owner := newUser("u1@example.com")

	created, err := s.Create(ctx, owner, domain.ProductInput{Name: "Blue Paint", SupplierCode: "BP-01"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	got, err := s.GetByID(ctx, owner, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "Blue Paint" || got.SupplierCode != "BP-01" || got.OwnerID != owner.ID {
		t.Fatalf("unexpected product: %+v", got)
	}

	if _, err := s.GetByID(ctx, newUser("u2@example.com"), created.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for another user, got %v", err)
	}
	if _, err := s.GetByID(ctx, owner, uuid.New()); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.GetByID(ctx, nil, created.ID); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected not authenticated, got %v", err)
	}
}

func TestProductUniquenessIsGlobal(t *testing.T) {
	s, _ := newTestProductService()
	ctx := context.Background()

	if _, err := s.Create(ctx, newUser("u1@example.com"), domain.ProductInput{Name: "Brush"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := s.Create(ctx, newUser("u2@example.com"), domain.ProductInput{Name: "Brush"})
	if !errors.Is(err, domain.ErrProductAlreadyExists) {
		t.Fatalf("expected already exists across owners, got %v", err)
	}
	if _, err := s.Create(ctx, newUser("u2@example.com"), domain.ProductInput{Name: "Brush", SupplierCode: "B-2"}); err != nil {
		t.Fatalf("different supplier code should be accepted: %v", err)
	}
}

func TestProductCreateValidation(t *testing.T) {
	s, _ := newTestProductService()
	long := make([]byte, maxProductNameLength+1)
	for i := range long {
		long[i] = 'x'
	}
	for name, in := range map[string]domain.ProductInput{
		"blank name": {Name: "   "},
		"long name":  {Name: string(long)},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Create(context.Background(), newUser("u@example.com"), in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestProductLengthLimitsCountCharacters(t *testing.T) {
	s, _ := newTestProductService()
	ctx := context.Background()
	owner := newUser("u@example.com")

	atLimit := strings.Repeat("é", maxProductNameLength)
	if _, err := s.Create(ctx, owner, domain.ProductInput{Name: atLimit, SupplierCode: strings.Repeat("ß", maxSupplierCodeLength)}); err != nil {
		t.Fatalf("multibyte values at the limit should be accepted: %v", err)
	}

	for name, in := range map[string]domain.ProductInput{
		"name":          {Name: strings.Repeat("é", maxProductNameLength+1)},
		"supplier code": {Name: "Glaze", SupplierCode: strings.Repeat("ß", maxSupplierCodeLength+1)},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Create(ctx, owner, in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error one character over the limit, got %v", err)
			}
		})
	}
}

func TestProductListMine(t *testing.T) {
	s, _ := newTestProductService()
	ctx := context.Background()
	u1, u2 := newUser("u1@example.com"), newUser("u2@example.com")
	_, _ = s.Create(ctx, u1, domain.ProductInput{Name: "A"})
	_, _ = s.Create(ctx, u1, domain.ProductInput{Name: "B"})
	_, _ = s.Create(ctx, u2, domain.ProductInput{Name: "C"})

	mine, err := s.ListMine(ctx, u1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 products, got %d", len(mine))
	}
}

func TestProductUpdateAndPatch(t *testing.T) {
	s, repo := newTestProductService()
	ctx := context.Background()
	owner := newUser("u1@example.com")
	p, _ := s.Create(ctx, owner, domain.ProductInput{Name: "Roller", SupplierCode: "R-1"})

	updated, err := s.Update(ctx, owner, p.ID, domain.ProductInput{Name: "Roller XL"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Roller XL" || updated.SupplierCode != "" {
		t.Fatalf("full update should replace every field: %+v", updated)
	}

	patched, err := s.Patch(ctx, owner, p.ID, domain.ProductPatch{SupplierCode: domain.Set("R-2")})
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if patched.Name != "Roller XL" || patched.SupplierCode != "R-2" {
		t.Fatalf("patch should only touch supplier code: %+v", patched)
	}

	cleared, err := s.Patch(ctx, owner, p.ID, domain.ProductPatch{SupplierCode: domain.Clear[string](), Name: domain.Clear[string]()})
	if err != nil {
		t.Fatalf("patch clear failed: %v", err)
	}
	if cleared.Name != "Roller XL" || cleared.SupplierCode != "" {
		t.Fatalf("null name should be ignored, null code should clear: %+v", cleared)
	}

	before := repo.updates
	same, err := s.Patch(ctx, owner, p.ID, domain.ProductPatch{})
	if err != nil {
		t.Fatalf("empty patch failed: %v", err)
	}
	if repo.updates != before {
		t.Fatalf("empty patch must not write")
	}
	if *same != *cleared {
		t.Fatalf("empty patch changed the product: %+v vs %+v", same, cleared)
	}
}

func TestProductPatchConflict(t *testing.T) {
	s, _ := newTestProductService()
	ctx := context.Background()
	owner := newUser("u1@example.com")
	_, _ = s.Create(ctx, owner, domain.ProductInput{Name: "Taken"})
	p, _ := s.Create(ctx, owner, domain.ProductInput{Name: "Free"})

	if _, err := s.Patch(ctx, owner, p.ID, domain.ProductPatch{Name: domain.Set("Taken")}); !errors.Is(err, domain.ErrProductAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestProductDelete(t *testing.T) {
	s, _ := newTestProductService()
	ctx := context.Background()
	owner := newUser("u1@example.com")
	p, _ := s.Create(ctx, owner, domain.ProductInput{Name: "Tape"})

	if err := s.Delete(ctx, newUser("u2@example.com"), p.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized delete, got %v", err)
	}
	if err := s.Delete(ctx, owner, p.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.GetByID(ctx, owner, p.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
