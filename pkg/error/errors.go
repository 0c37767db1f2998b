package error

import (
	"errors"
	"net/http"

	"github.com/labtrack/labtrack/internal/domain"
)

type AppError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Field   string      `json:"field,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest     = &AppError{Code: "BAD_REQUEST", Message: "Bad request", Status: http.StatusBadRequest}
	ErrUnauthorized   = &AppError{Code: "UNAUTHORIZED", Message: "Unauthorized", Status: http.StatusUnauthorized}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Not found", Status: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "Internal server error", Status: http.StatusInternalServerError}
	ErrConflict       = &AppError{Code: "CONFLICT", Message: "Conflict", Status: http.StatusConflict}
)

func NewBadRequest(message string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: message, Status: http.StatusBadRequest}
}

func NewValidation(field, message string) *AppError {
	return &AppError{Code: "VALIDATION_FAILED", Message: message, Status: http.StatusBadRequest, Field: field}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: message, Status: http.StatusUnauthorized}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: message, Status: http.StatusForbidden}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, Status: http.StatusNotFound}
}

func NewInternalServer(message string) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: http.StatusInternalServerError}
}

func NewConflict(code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: http.StatusConflict}
}

// MapError translates domain errors into their HTTP representation. Storage
// failures and unknown errors hide their cause.
func MapError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var (
		ve  *domain.ValidationError
		nf  *domain.NotFoundError
		dup *domain.DuplicateKeyError
		ite *domain.InvalidTransitionError
		ce  *domain.ConflictError
		fe  *domain.ForbiddenOperationError
		de  *domain.DomainError
	)
	switch {
	case errors.As(err, &ve):
		return NewValidation(ve.Field, ve.Error())
	case errors.As(err, &nf):
		return NewNotFound(nf.Error())
	case errors.As(err, &dup):
		e := NewConflict("DUPLICATE_KEY", dup.Error())
		e.Field = dup.Field
		return e
	case errors.As(err, &ite):
		return NewConflict("INVALID_TRANSITION", ite.Error())
	case errors.As(err, &ce):
		e := NewConflict("RESERVATION_CONFLICT", ce.Error())
		e.Details = map[string]int64{"reservation_id": ce.ReservationID}
		return e
	case errors.As(err, &fe):
		return NewForbidden(fe.Error())
	case errors.Is(err, domain.ErrConfirmationRequired):
		return NewConflict("CONFIRMATION_REQUIRED", domain.ErrConfirmationRequired.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		return NewUnauthorized(domain.ErrInvalidCredentials.Error())
	case errors.As(err, &de):
		return NewBadRequest(de.Error())
	default:
		return NewInternalServer("An unexpected error occurred")
	}
}
