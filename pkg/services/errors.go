// Package services provides the lead and workflow services that sit between
// the HTTP layer and persistence.
package services

import (
	"errors"
	"fmt"

	"github.com/piazza-crm/leadflow/pkg/workflow"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidStatus  = errors.New("invalid lead status")
	ErrDefinitionNil  = errors.New("workflow definition cannot be nil")

	// ErrNoActions is the executor's empty-action precondition, surfaced
	// here so callers depend on one package for validation checks.
	ErrNoActions = workflow.ErrNoActions
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrDefinitionNil) ||
		errors.Is(err, ErrNoActions)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
