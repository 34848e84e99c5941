package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
)

// Domain error codes, as carried by shared.DomainError
const (
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeAlreadyExists          = "ALREADY_EXISTS"
	ErrCodeInvalidInput           = "INVALID_INPUT"
	ErrCodeInvalidState           = "INVALID_STATE"
	ErrCodeEmptyCart              = "EMPTY_CART"
	ErrCodeUnknownProduct         = "UNKNOWN_PRODUCT"
	ErrCodeInsufficientBalance    = "INSUFFICIENT_BALANCE"
	ErrCodeReconciliationRequired = "RECONCILIATION_REQUIRED"
	ErrCodeStorageUnavailable     = "STORAGE_UNAVAILABLE"
	ErrCodeNotInitialized         = "NOT_INITIALIZED"
	ErrCodeStorageDisabled        = "STORAGE_DISABLED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:   http.StatusNotFound,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeInvalidInput:  http.StatusBadRequest,

	// business rule violations
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeEmptyCart:           http.StatusUnprocessableEntity,
	ErrCodeUnknownProduct:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientBalance: http.StatusUnprocessableEntity,

	ErrCodeReconciliationRequired: http.StatusInternalServerError,

	ErrCodeStorageUnavailable: http.StatusServiceUnavailable,
	ErrCodeNotInitialized:     http.StatusServiceUnavailable,
	ErrCodeStorageDisabled:    http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code, or 500 for
// unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
