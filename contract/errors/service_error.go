package errors

import (
	stderrors "errors"
	"fmt"
)

// Class names carried by ServiceError. They double as CSS-friendly status classes.
const (
	ClassBadRequest   = "bad-request"
	ClassNotFound     = "not-found"
	ClassGeneralError = "general-error"
)

// GenericMessage is the message some backends return when no real message was supplied.
const GenericMessage = "Error"

// ServiceError is the error payload produced by a remote service call.
// It is stored verbatim in a service state's isError field.
type ServiceError struct {
	Name      string         `json:"name"`
	Message   string         `json:"message"`
	Code      int            `json:"code"`
	ClassName string         `json:"className"`
	Errors    map[string]any `json:"errors,omitempty"`

	cause error
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return e.Name
	}

	return e.Message
}

// Unwrap exposes the underlying error, if any.
func (e *ServiceError) Unwrap() error { return e.cause }

// NotFound builds a 404 error for the given message.
func NotFound(format string, args ...any) *ServiceError {
	return &ServiceError{Name: "NotFound", Message: fmt.Sprintf(format, args...), Code: 404, ClassName: ClassNotFound}
}

// BadRequest builds a 400 error for the given message.
func BadRequest(format string, args ...any) *ServiceError {
	return &ServiceError{Name: "BadRequest", Message: fmt.Sprintf(format, args...), Code: 400, ClassName: ClassBadRequest}
}

// General builds a 500 error for the given message.
func General(format string, args ...any) *ServiceError {
	return &ServiceError{Name: "GeneralError", Message: fmt.Sprintf(format, args...), Code: 500, ClassName: ClassGeneralError}
}

// FromError converts any error into a ServiceError. A ServiceError anywhere in the
// chain is returned as-is; other errors become a general error wrapping the original.
func FromError(err error) *ServiceError {
	if err == nil {
		return nil
	}

	var se *ServiceError
	if stderrors.As(err, &se) {
		return se
	}

	return &ServiceError{
		Name:      "GeneralError",
		Message:   err.Error(),
		Code:      500,
		ClassName: ClassGeneralError,
		cause:     err,
	}
}
