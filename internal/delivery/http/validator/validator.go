// Package validator adapts go-playground/validator to echo's Validator
// interface.
package validator

import (
	playground "github.com/go-playground/validator/v10"

	domainerrors "github.com/TimLeitch/ms-contact-sync/internal/domain/errors"
)

// Validator validates bound request structs against their struct tags.
type Validator struct {
	validate *playground.Validate
}

// New creates the request validator installed on the echo server.
func New() *Validator {
	return &Validator{validate: playground.New()}
}

// Validate checks struct tags and converts failures into the application
// error taxonomy so the error handler renders them consistently.
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
