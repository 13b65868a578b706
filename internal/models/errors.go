package models

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors used across layers.
var (
	ErrNotFound   = errors.New("account not found")
	ErrValidation = errors.New("validation error")
	ErrStorage    = errors.New("storage error")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError from an error map.
// Fields are sorted so the message is stable.
func NewValidationError(errs AccountErrors) *ValidationError {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := &ValidationError{Errors: make([]FieldError, 0, len(fields))}
	for _, f := range fields {
		out.Errors = append(out.Errors, FieldError{Field: f, Message: errs[f]})
	}
	return out
}

// Fields returns the errors keyed by field name.
func (e *ValidationError) Fields() AccountErrors {
	out := make(AccountErrors, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}
