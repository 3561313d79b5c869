package security

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
)

func TestValidateOwnership(t *testing.T) {
	authz := NewAuthorizer(nil)
	owner := &domain.User{ID: uuid.New(), Roles: []domain.Role{domain.RoleUser}}
	admin := &domain.User{ID: uuid.New(), Roles: []domain.Role{domain.RoleAdmin}}
	resourceID := uuid.New()

	if err := authz.ValidateOwnership(owner, ResourceProduct, resourceID, owner.ID); err != nil {
		t.Fatalf("owner should pass: %v", err)
	}
	if err := authz.ValidateOwnership(admin, ResourceProduct, resourceID, owner.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("admin of another tenant should be rejected, got %v", err)
	}
	if err := authz.ValidateOwnership(nil, ResourceProduct, resourceID, owner.ID); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("nil caller should be unauthenticated, got %v", err)
	}
}
