// Package apperror defines the errors services and handlers raise on purpose.
// Anything else reaching the error handler is classified from its type.
package apperror

import (
	"fmt"
	"net/http"

	"github.com/stemsi/course-registry/internal/response"
)

// Error is an application error with an explicit HTTP status.
type Error struct {
	Status  int
	Code    response.ErrCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an Error. An empty message uses the default text of code.
func New(status int, code response.ErrCode, message string) *Error {
	if message == "" {
		message = response.GetMessage(code)
	}
	return &Error{Status: status, Code: code, Message: message}
}

// NotFound reports a missing resource, e.g. NotFound("student").
func NotFound(resource string) *Error {
	return New(http.StatusNotFound, response.ErrNotFound, resource+" not found")
}

// Conflict reports a business-level duplicate.
func Conflict(message string) *Error {
	return New(http.StatusConflict, response.ErrConflict, message)
}

// ValidationError carries every rejected field of a request.
type ValidationError struct {
	Code   response.ErrCode
	Fields []response.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return response.GetMessage(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Fields[0].Field, e.Fields[0].Message)
}

// Invalid builds a ValidationError for request bodies.
func Invalid(fields []response.FieldError) *ValidationError {
	return &ValidationError{Code: response.ErrValidation, Fields: fields}
}

// InvalidQuery builds a ValidationError for query strings.
func InvalidQuery(fields []response.FieldError) *ValidationError {
	return &ValidationError{Code: response.ErrInvalidQuery, Fields: fields}
}

// InvalidID reports a path parameter that is not a positive integer.
func InvalidID(param string) *ValidationError {
	return &ValidationError{
		Code: response.ErrInvalidID,
		Fields: []response.FieldError{{
			Field:   param,
			Message: param + " must be a positive integer",
		}},
	}
}
