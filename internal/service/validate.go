package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
)

var validate = validator.New()

func validateEmail(field, email string) error {
	if email == "" {
		return domain.Validationf("%s must not be blank", field)
	}
	if err := validate.Var(email, "email,max=254"); err != nil {
		return domain.Validationf("%s must be a valid email address", field)
	}
	return nil
}

func validateQuantities(current, minimum int) error {
	if current < 0 {
		return domain.Validationf("current quantity must not be negative")
	}
	if current > domain.MaxQuantity {
		return domain.Validationf("current quantity must be at most %d", domain.MaxQuantity)
	}
	if minimum < 0 {
		return domain.Validationf("minimum stock level must not be negative")
	}
	if minimum > domain.MaxQuantity {
		return domain.Validationf("minimum stock level must be at most %d", domain.MaxQuantity)
	}
	return nil
}
