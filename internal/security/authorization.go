package security

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
)

// ResourceType identifies the kind of resource being accessed
type ResourceType string

const (
	ResourceProduct   ResourceType = "product"
	ResourceInventory ResourceType = "inventory"
	ResourceItem      ResourceType = "item"
)

// Authorizer performs resource-level ownership checks
type Authorizer struct {
	logger *slog.Logger
}

// NewAuthorizer creates a new ownership authorizer
func NewAuthorizer(logger *slog.Logger) *Authorizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authorizer{logger: logger}
}

// ValidateOwnership fails with domain.ErrUnauthorized unless caller owns the
// resource. Roles grant no bypass: administrators only see their own data.
func (a *Authorizer) ValidateOwnership(caller *domain.User, resource ResourceType, resourceID, ownerID uuid.UUID) error {
	if caller == nil {
		return domain.ErrNotAuthenticated
	}
	if caller.ID != ownerID {
		a.logger.Warn("resource access denied",
			slog.String("user_id", caller.ID.String()),
			slog.String("resource_type", string(resource)),
			slog.String("resource_id", resourceID.String()),
		)
		return fmt.Errorf("%s %s: %w", resource, resourceID, domain.ErrUnauthorized)
	}
	return nil
}
