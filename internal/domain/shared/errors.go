package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so errors built with
// NewDomainError match the package sentinels.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound               = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists          = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput           = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState           = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientBalance    = NewDomainError("INSUFFICIENT_BALANCE", "Insufficient balance available")
	ErrStorageUnavailable     = NewDomainError("STORAGE_UNAVAILABLE", "Storage engine is unavailable")
	ErrNotInitialized         = NewDomainError("NOT_INITIALIZED", "Storage has not been initialized")
	ErrEmptyCart              = NewDomainError("EMPTY_CART", "Cart has no billable items")
	ErrUnknownProduct         = NewDomainError("UNKNOWN_PRODUCT", "Cart references a product that no longer exists")
	ErrReconciliationRequired = NewDomainError("RECONCILIATION_REQUIRED", "Sale recorded but stock was only partially adjusted")
)

// CodeOf returns the domain code carried by err, or an empty string.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
