package apperror

import (
	"errors"
	"net/http"
)

// Reason is a stable, machine-readable error code returned to POS clients
type Reason string

const (
	ReasonNotFound          Reason = "NOT_FOUND"
	ReasonInvalidTransition Reason = "INVALID_TRANSITION"
	ReasonAlreadyPaid       Reason = "ALREADY_PAID"
	ReasonTableMismatch     Reason = "TABLE_MISMATCH"
	ReasonEmptySelection    Reason = "EMPTY_SELECTION"
	ReasonCrossInvoice      Reason = "CROSS_INVOICE"
	ReasonAmountMismatch    Reason = "AMOUNT_MISMATCH"
	ReasonShiftAlreadyOpen  Reason = "SHIFT_ALREADY_OPEN"
	ReasonShiftNotOpen      Reason = "SHIFT_NOT_OPEN"
	ReasonVarianceExceeded  Reason = "VARIANCE_EXCEEDED"
	ReasonBusy              Reason = "BUSY"
	ReasonUnauthorized      Reason = "UNAUTHORIZED"
	ReasonValidation        Reason = "VALIDATION_FAILED"
	ReasonBadRequest        Reason = "BAD_REQUEST"
	ReasonInternal          Reason = "INTERNAL"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Reason  Reason       `json:"error_code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches on Reason so callers can use errors.Is(err, apperror.ErrAlreadyPaid)
// regardless of the message a particular call site attached.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Reason == t.Reason
}

// Common errors
var (
	ErrNotFound          = &AppError{Code: http.StatusNotFound, Reason: ReasonNotFound, Message: "Resource not found"}
	ErrInvalidTransition = &AppError{Code: http.StatusConflict, Reason: ReasonInvalidTransition, Message: "Invalid state transition"}
	ErrAlreadyPaid       = &AppError{Code: http.StatusConflict, Reason: ReasonAlreadyPaid, Message: "Invoice is already paid"}
	ErrTableMismatch     = &AppError{Code: http.StatusUnprocessableEntity, Reason: ReasonTableMismatch, Message: "Invoices belong to different tables"}
	ErrEmptySelection    = &AppError{Code: http.StatusUnprocessableEntity, Reason: ReasonEmptySelection, Message: "Selection is empty"}
	ErrCrossInvoice      = &AppError{Code: http.StatusUnprocessableEntity, Reason: ReasonCrossInvoice, Message: "Item does not belong to this invoice"}
	ErrAmountMismatch    = &AppError{Code: http.StatusUnprocessableEntity, Reason: ReasonAmountMismatch, Message: "Payment amount does not match invoice total"}
	ErrShiftAlreadyOpen  = &AppError{Code: http.StatusConflict, Reason: ReasonShiftAlreadyOpen, Message: "A shift is already open"}
	ErrShiftNotOpen      = &AppError{Code: http.StatusConflict, Reason: ReasonShiftNotOpen, Message: "Shift is not open"}
	ErrVarianceExceeded  = &AppError{Code: http.StatusConflict, Reason: ReasonVarianceExceeded, Message: "Cash variance exceeds tolerance"}
	ErrBusy              = &AppError{Code: http.StatusServiceUnavailable, Reason: ReasonBusy, Message: "The record is busy, please retry"}
	ErrUnauthorized      = &AppError{Code: http.StatusUnauthorized, Reason: ReasonUnauthorized, Message: "Unauthorized"}
	ErrForbidden         = &AppError{Code: http.StatusForbidden, Reason: ReasonUnauthorized, Message: "Forbidden"}
	ErrBadRequest        = &AppError{Code: http.StatusBadRequest, Reason: ReasonBadRequest, Message: "Bad request"}
	ErrInternalServer    = &AppError{Code: http.StatusInternalServerError, Reason: ReasonInternal, Message: "Internal server error"}
	ErrInvalidCredential = &AppError{Code: http.StatusUnauthorized, Reason: ReasonUnauthorized, Message: "Invalid manager credential"}
	ErrInvalidToken      = &AppError{Code: http.StatusUnauthorized, Reason: ReasonUnauthorized, Message: "Invalid token"}
)

// NewAppError creates a new application error
func NewAppError(code int, reason Reason, message string) *AppError {
	return &AppError{
		Code:    code,
		Reason:  reason,
		Message: message,
	}
}

// Wrap returns a copy of base carrying a call-site specific message
func Wrap(base *AppError, message string) *AppError {
	return &AppError{
		Code:    base.Code,
		Reason:  base.Reason,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Reason:  ReasonValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewFieldError creates a validation error for a single field
func NewFieldError(field, message string) *AppError {
	return NewValidationError([]FieldError{{Field: field, Message: message}})
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return Wrap(ErrNotFound, resource+" not found")
}

// NewInvalidTransitionError creates an invalid transition error with a custom message
func NewInvalidTransitionError(message string) *AppError {
	return Wrap(ErrInvalidTransition, message)
}

// NewForbiddenError reports a missing capability
func NewForbiddenError(message string) *AppError {
	return Wrap(ErrForbidden, message)
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return Wrap(ErrBadRequest, message)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible. Unknown errors are
// reported as INTERNAL without leaking their text to the client.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer
}
