package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrLeadNotFound indicates no lead exists for the given identifier.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrDefinitionNotFound indicates no workflow definition is saved, or
	// the stored document was malformed and is being treated as absent.
	ErrDefinitionNotFound = errors.New("workflow definition not found")
)

// LeadError wraps lead-related errors with additional context.
type LeadError struct {
	Op     string // Operation being performed (e.g., "LeadByID", "SaveLead")
	LeadID string
	Err    error
}

func (e *LeadError) Error() string {
	return fmt.Sprintf("%s operation failed for lead %s: %v", e.Op, e.LeadID, e.Err)
}

func (e *LeadError) Unwrap() error {
	return e.Err
}

func (e *LeadError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewLeadError creates a new lead error with context.
func NewLeadError(op, leadID string, err error) *LeadError {
	return &LeadError{
		Op:     op,
		LeadID: leadID,
		Err:    err,
	}
}

// IsLeadNotFound checks if an error indicates a lead was not found.
func IsLeadNotFound(err error) bool {
	return errors.Is(err, ErrLeadNotFound)
}

// IsDefinitionNotFound checks if an error indicates no saved definition.
func IsDefinitionNotFound(err error) bool {
	return errors.Is(err, ErrDefinitionNotFound)
}
