package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// ErrConfirmationRequired is returned when a cascading delete has dependents
// and the caller did not confirm it.
var ErrConfirmationRequired = NewDomainError("deletion requires confirmation")

// ErrInvalidCredentials is returned when a login or password does not match.
var ErrInvalidCredentials = NewDomainError("invalid login or password")

// ValidationError reports a missing or malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// DuplicateKeyError reports a unique constraint violation on Field.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

// InvalidTransitionError reports a state change the lifecycle does not allow.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

// ConflictError reports a reservation overlapping an existing confirmed one.
type ConflictError struct {
	EquipmentID   int64
	ReservationID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("equipment %d is already reserved in that period (reservation %d)", e.EquipmentID, e.ReservationID)
}

// ForbiddenOperationError reports an operation that is never allowed.
type ForbiddenOperationError struct {
	Reason string
}

func (e *ForbiddenOperationError) Error() string {
	return "forbidden: " + e.Reason
}

// NotFoundError reports a missing row.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// StorageError wraps a failure of the underlying store.
type StorageError struct {
	Op        string
	Err       error
	Retryable bool
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsRetryable reports whether err wraps a StorageError flagged as retryable.
func IsRetryable(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Retryable
}
