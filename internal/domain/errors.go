package domain

import (
	"errors"
	"fmt"
)

// ErrValidation матчится через errors.Is для любой *ValidationError
var ErrValidation = errors.New("validation error")

// Ошибка входных данных: клиентская, повтор не поможет
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Reason)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
