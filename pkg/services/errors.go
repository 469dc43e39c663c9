// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidNodeType     = errors.New("invalid node type")
	ErrInvalidInputFields  = errors.New("invalid input field definition")
	ErrInvalidCondition    = errors.New("invalid transition condition")
	ErrInvalidFreezeWindow = errors.New("invalid freeze window")
	ErrEmptySampleID       = errors.New("sample ID cannot be empty")

	// Freeze-Window Locks (423 Locked).
	ErrNodeLocked = errors.New("node data is locked for editing")
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

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidNodeType) ||
		errors.Is(err, ErrInvalidInputFields) ||
		errors.Is(err, ErrInvalidCondition) ||
		errors.Is(err, ErrInvalidFreezeWindow) ||
		errors.Is(err, ErrEmptySampleID)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrNodeReferenced)
}

// IsLockedError checks if an error means the freeze window rejected an edit (HTTP 423).
func IsLockedError(err error) bool {
	return errors.Is(err, ErrNodeLocked)
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

// NewLockedError creates an error carrying the guard's lock reason.
func NewLockedError(op, reason string) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    "NODE_LOCKED",
		Message: reason,
		Err:     ErrNodeLocked,
	}
}
