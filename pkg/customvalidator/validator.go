// Package customvalidator registers the dating-domain-specific rules on
// top of go-playground/validator's struct-tag validation (spec.md §4.3).
package customvalidator

import (
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations registers every custom rule used by DTO
// struct tags across the auth/profile/discovery/chat services. Age-range
// validation on birth_date happens in the profile service instead of here:
// DTOs carry birth_date as a raw string (client sends "YYYY-MM-DD"), so
// the 18-120 gate runs after parsing, not as a struct-tag rule.
func RegisterCustomValidations(v *validator.Validate) error {
	return v.RegisterValidation("interest_tag", isShortTag)
}

// isShortTag enforces the 50-char cap on each interest tag (spec.md §3).
func isShortTag(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= 50
}

// EchoValidator adapts *validator.Validate to echo.Validator, shared by
// every cmd/ binary's bootstrap.
type EchoValidator struct {
	validator *validator.Validate
}

// New builds the validator every service binds to its echo instance.
func New() *EchoValidator {
	v := validator.New()
	if err := RegisterCustomValidations(v); err != nil {
		panic(err)
	}
	return &EchoValidator{validator: v}
}

func (cv *EchoValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
