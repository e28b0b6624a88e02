package types

import (
	"fmt"
	"net/http"
)

// Error types returned in CustomError.Type.
const (
	ErrTypeValidation = "validation"
	ErrTypeNotFound   = "not_found"
	ErrTypeConflict   = "conflict"
	ErrTypeCapacity   = "capacity"
	ErrTypeRender     = "render"
)

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Err     error  `json:"-"`
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s [type: %s]: %v", e.Code, e.Message, e.Type, e.Err)
	}
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

func (e *CustomError) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...any) *CustomError {
	return &CustomError{Code: http.StatusBadRequest, Message: fmt.Sprintf(format, args...), Type: ErrTypeValidation}
}

func NewNotFoundError(format string, args ...any) *CustomError {
	return &CustomError{Code: http.StatusNotFound, Message: fmt.Sprintf(format, args...), Type: ErrTypeNotFound}
}

// NewConflictError keeps the message generic; the driver cause travels in Err
// for logging only.
func NewConflictError(message string, cause error) *CustomError {
	return &CustomError{Code: http.StatusConflict, Message: message, Type: ErrTypeConflict, Err: cause}
}

func NewCapacityError(format string, args ...any) *CustomError {
	return &CustomError{Code: http.StatusRequestEntityTooLarge, Message: fmt.Sprintf(format, args...), Type: ErrTypeCapacity}
}

func NewRenderError(message string, cause error) *CustomError {
	return &CustomError{Code: http.StatusBadRequest, Message: message, Type: ErrTypeRender, Err: cause}
}
