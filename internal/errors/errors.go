package errors

import (
	stderrors "errors"
	"fmt"
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
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if stderrors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

// InvalidStateError reports an operation the entity's lifecycle does not allow,
// such as adding items to a tab that is no longer open.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

func NewInvalidStateError(message string) *InvalidStateError {
	return &InvalidStateError{Message: message}
}

func IsInvalidStateError(err error) (*InvalidStateError, bool) {
	var ise *InvalidStateError
	if stderrors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func IsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

type InsufficientStockError struct {
	Message   string
	ProductID string
	Available string
	Unit      string
}

func (e *InsufficientStockError) Error() string {
	return e.Message
}

func NewInsufficientStockError(productID, available, unit string) *InsufficientStockError {
	return &InsufficientStockError{
		Message:   fmt.Sprintf("insufficient stock: available %s %s", available, unit),
		ProductID: productID,
		Available: available,
		Unit:      unit,
	}
}

func IsInsufficientStockError(err error) (*InsufficientStockError, bool) {
	var ise *InsufficientStockError
	if stderrors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

// DeadlockError is returned once the store kept aborting a unit of work
// with lock conflicts after every retry attempt.
type DeadlockError struct {
	Message string
}

func (e *DeadlockError) Error() string {
	return e.Message
}

func NewDeadlockError(message string) *DeadlockError {
	return &DeadlockError{Message: message}
}

func IsDeadlockError(err error) (*DeadlockError, bool) {
	var de *DeadlockError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

type InternalError struct {
	Message string
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

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

func IsInternalError(err error) (*InternalError, bool) {
	var e *InternalError
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Wrap passes typed domain errors through untouched and turns anything else
// into an InternalError, so callers only ever see one of the known kinds.
func Wrap(message string, err error) error {
	if err == nil {
		return nil
	}
	if IsKnown(err) {
		return err
	}
	return NewInternalError(message, err)
}

func IsKnown(err error) bool {
	if _, ok := IsValidationError(err); ok {
		return true
	}
	if _, ok := IsNotFoundError(err); ok {
		return true
	}
	if _, ok := IsInvalidStateError(err); ok {
		return true
	}
	if _, ok := IsConflictError(err); ok {
		return true
	}
	if _, ok := IsInsufficientStockError(err); ok {
		return true
	}
	if _, ok := IsDeadlockError(err); ok {
		return true
	}
	var ie *InternalError
	return stderrors.As(err, &ie)
}
