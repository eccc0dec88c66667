// Package errors provides custom error types for the CostTrak API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}

	// ErrDataUnavailable signals that an underlying read failed. It is never
	// substituted with empty data: an empty result would be indistinguishable
	// from "legitimately no data" and would mislead financial projections.
	ErrDataUnavailable = &AppError{Code: "DATA_UNAVAILABLE", Message: "Required data could not be read", StatusCode: http.StatusServiceUnavailable}
)

// Project errors.
var (
	ErrProjectNotFound    = &AppError{Code: "PROJECT_NOT_FOUND", Message: "Project not found", StatusCode: http.StatusNotFound}
	ErrDuplicateJobNumber = &AppError{Code: "DUPLICATE_JOB_NUMBER", Message: "A project with this job number already exists", StatusCode: http.StatusConflict}
)

// Craft type errors.
var (
	ErrCraftTypeNotFound  = &AppError{Code: "CRAFT_TYPE_NOT_FOUND", Message: "Craft type not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCraftCode = &AppError{Code: "DUPLICATE_CRAFT_CODE", Message: "A craft type with this code already exists", StatusCode: http.StatusConflict}
	ErrCraftTypeInactive  = &AppError{Code: "CRAFT_TYPE_INACTIVE", Message: "Craft type is deactivated", StatusCode: http.StatusConflict}
)

// Labor errors.
var (
	ErrNegativeLaborValues = &AppError{Code: "NEGATIVE_LABOR_VALUES", Message: "Hours and cost must be zero or greater", StatusCode: http.StatusBadRequest}
)

// Purchase order errors.
var (
	ErrPurchaseOrderNotFound = &AppError{Code: "PURCHASE_ORDER_NOT_FOUND", Message: "Purchase order not found", StatusCode: http.StatusNotFound}
	ErrDuplicatePONumber     = &AppError{Code: "DUPLICATE_PO_NUMBER", Message: "A purchase order with this number already exists for the project", StatusCode: http.StatusConflict}
	ErrPurchaseOrderClosed   = &AppError{Code: "PURCHASE_ORDER_CLOSED", Message: "Purchase order is closed and cannot be modified", StatusCode: http.StatusConflict}
)

// Change order errors.
var (
	ErrChangeOrderNotFound   = &AppError{Code: "CHANGE_ORDER_NOT_FOUND", Message: "Change order not found", StatusCode: http.StatusNotFound}
	ErrChangeOrderNotPending = &AppError{Code: "CHANGE_ORDER_NOT_PENDING", Message: "Change order has already been resolved", StatusCode: http.StatusConflict}
)

// Budget errors.
var (
	ErrBudgetItemNotFound = &AppError{Code: "BUDGET_ITEM_NOT_FOUND", Message: "Budget line item not found", StatusCode: http.StatusNotFound}
)

// Notification errors.
var (
	ErrNotificationNotFound = &AppError{Code: "NOTIFICATION_NOT_FOUND", Message: "Notification not found", StatusCode: http.StatusNotFound}
)
