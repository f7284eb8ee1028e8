package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Validation failure reasons
const (
	ReasonEmpty          = "empty"
	ReasonDuplicate      = "duplicate"
	ReasonNotFound       = "not_found"
	ReasonAmountTooSmall = "amount_too_small"
	ReasonAmountTooLarge = "amount_too_large"
	ReasonOutOfRange     = "out_of_range"
	ReasonSelfReference  = "self_reference"
	ReasonInvalid        = "invalid"
	ReasonReserved       = "reserved"
	ReasonTooShort       = "too_short"
)

var (
	// ErrEmptyCart is returned when a shopping list is requested for an empty cart
	ErrEmptyCart = errors.New("shopping cart is empty")
	// ErrForbidden is returned when a user modifies a recipe they do not own
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned by Authenticate for an unknown email or a bad password
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError is a field-scoped rejection of user input
type ValidationError struct {
	Field   string
	Reason  string
	Message string
	// Err is the underlying failure, if any
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(field, reason, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// imageError rejects an image payload that storage.DecodeImage refused
func imageError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: ReasonInvalid, Message: err.Error(), Err: err}
}

// ConflictError reports a uniqueness violation such as a repeated favorite
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NotFoundError reports a missing entity or membership row
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// notFoundOr maps gorm's missing-record error to a NotFoundError
func notFoundOr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: resource}
	}
	return err
}

// conflictOr maps a unique index violation to a ConflictError
func conflictOr(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &ConflictError{Message: message}
	}
	return err
}
