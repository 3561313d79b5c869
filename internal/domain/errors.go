package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared by services, repositories and the HTTP layer.
// Callers classify with errors.Is; wrapping with %w keeps the kind.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInventoryNotFound = errors.New("inventory not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrUserNotFound      = errors.New("user not found")

	ErrUnauthorized = errors.New("not authorized to access this resource")

	ErrProductAlreadyExists   = errors.New("product already exists")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrReferencedByItems      = errors.New("resource is still referenced by items")

	ErrValidation        = errors.New("validation failed")
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenMalformed     = errors.New("token malformed")
)

// InsufficientStockError is returned when an adjustment would drive the
// quantity of an item below zero. It matches ErrInsufficientStock.
type InsufficientStockError struct {
	ProductName     string
	CurrentQuantity int
	Delta           int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: current quantity %d, requested change %d",
		e.ProductName, e.CurrentQuantity, e.Delta)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Validationf builds an ErrValidation-wrapped error with a field message
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err is any of the entity not-found kinds
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrInventoryNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
