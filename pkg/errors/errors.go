package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrDentistNotFound
	ErrPatientNotFound
	ErrDentistInactive
	ErrConflict
	ErrInvalidTransition
	ErrTimeout
	ErrInternal
)

// AppError represents an application error
type AppError struct {
	Code        ErrorCode   `json:"code"`
	Message     string      `json:"message"`
	ConflictIDs []uuid.UUID `json:"conflicting_ids,omitempty"`
	Err         error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status so each error kind
// keeps a distinct outward signal.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound, ErrDentistNotFound, ErrPatientNotFound:
		return http.StatusNotFound
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrDentistInactive, ErrInvalidTransition:
		return http.StatusUnprocessableEntity
	case ErrConflict:
		return http.StatusConflict
	case ErrTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func DentistNotFound(id uuid.UUID) *AppError {
	return &AppError{
		Code:    ErrDentistNotFound,
		Message: fmt.Sprintf("dentist %s not found", id),
	}
}

func PatientNotFound(id uuid.UUID) *AppError {
	return &AppError{
		Code:    ErrPatientNotFound,
		Message: fmt.Sprintf("patient %s not found", id),
	}
}

func DentistInactive(id uuid.UUID) *AppError {
	return &AppError{
		Code:    ErrDentistInactive,
		Message: fmt.Sprintf("dentist %s is inactive", id),
	}
}

// SchedulingConflict carries the ids of the appointments blocking the
// requested interval.
func SchedulingConflict(ids []uuid.UUID) *AppError {
	return &AppError{
		Code:        ErrConflict,
		Message:     "requested time conflicts with existing appointments",
		ConflictIDs: ids,
	}
}

func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: fmt.Sprintf("invalid status transition from %s to %s", from, to),
	}
}

func Timeout(err error) *AppError {
	return &AppError{
		Code:    ErrTimeout,
		Message: "store operation timed out",
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// CodeOf returns the code carried by err, or ErrInternal when err is
// not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
