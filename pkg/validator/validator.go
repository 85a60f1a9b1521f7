// Package validator wires go-playground/validator into echo so the
// request DTO validate tags are enforced on every bound payload.
package validator

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator implements echo.Validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates the validator registered on the echo instance at startup
func New() *CustomValidator {
	v := validator.New()
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
