package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeCategoryNotFound  = "CATEGORY_NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
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
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrCategoryNotFound   = NewDomainError(ErrCodeCategoryNotFound, "Category not found")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInsufficientStock  = NewDomainError(ErrCodeInsufficientStock, "Not enough stock for the requested quantity")
	ErrInvalidStatus      = NewDomainError(ErrCodeInvalidStatus, "Invalid status provided")
	ErrNotCancellable     = NewDomainError(ErrCodeInvalidState, "Only pending orders can be cancelled")
	ErrForbidden          = NewDomainError(ErrCodeForbidden, "You do not have permission to perform this action")
	ErrConflict           = NewDomainError(ErrCodeConflict, "The operation conflicted with a concurrent change, please retry")
	ErrInvalidCredentials = NewDomainError(ErrCodeUnauthorised, "Invalid username or password")
	ErrSessionExpired     = NewDomainError(ErrCodeUnauthorised, "Session is invalid or has expired")
)

// NewInsufficientStockError reports a stock shortfall for a named product.
func NewInsufficientStockError(productName string, available int) *DomainError {
	return NewDomainError(
		ErrCodeInsufficientStock,
		fmt.Sprintf("Not enough stock for product %s. Available: %d", productName, available),
	)
}

// NewAlreadyExistsError reports a uniqueness violation on the named field.
func NewAlreadyExistsError(field string) *DomainError {
	return NewDomainError(ErrCodeAlreadyExists, fmt.Sprintf("A record with this %s already exists", field))
}
