package errors

import (
	"errors"
	"fmt"
)

// Error kinds. Typed errors below wrap one of these so callers can match
// with errors.Is regardless of the message.
var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrVariationNotFound   = errors.New("variation not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrTerminalStatus      = errors.New("order status is terminal")
	ErrInvalidCancellation = errors.New("invalid order cancellation")
	ErrStatusConflict      = errors.New("order status changed concurrently")
	ErrForbidden           = errors.New("forbidden")
	ErrStorageFailure      = errors.New("storage failure")
	ErrTransportFailure    = errors.New("transport failure")
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
	Kind    error
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Unwrap() error {
	return e.Kind
}

func NewNotFoundError(kind error, message string) *NotFoundError {
	return &NotFoundError{
		Message: message,
		Kind:    kind,
	}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if errors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

// ConflictError reports a request that is well-formed but not allowed in the
// current state of the order.
type ConflictError struct {
	Message string
	Kind    error
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Unwrap() error {
	return e.Kind
}

func NewConflictError(kind error, message string) *ConflictError {
	return &ConflictError{
		Message: message,
		Kind:    kind,
	}
}

func IsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func IsForbiddenError(err error) (*ForbiddenError, bool) {
	var fe *ForbiddenError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// InternalError wraps collaborator faults (storage, transport). Kind is
// matched by Is so the cause chain stays intact for Unwrap.
type InternalError struct {
	Message string
	Kind    error
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func (e *InternalError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

func NewStorageError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Kind:    ErrStorageFailure,
		Cause:   cause,
	}
}

func NewTransportError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Kind:    ErrTransportFailure,
		Cause:   cause,
	}
}

func IsInternalError(err error) (*InternalError, bool) {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
