// Package apperr defines the application error taxonomy. Every error that
// crosses the HTTP boundary carries a stable machine-readable code, a
// human-readable message, and the HTTP status it maps to. Unexpected
// storage failures are wrapped as Internal and never leak details.
package apperr

import "fmt"

// Error codes surfaced in API responses.
const (
	CodeValidation            = "VALIDATION"
	CodeInvalidHierarchy      = "INVALID_HIERARCHY"
	CodeIncompletePublication = "INCOMPLETE_PUBLICATION"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeNotFound              = "NOT_FOUND"
	CodeConflict              = "CONFLICT"
	CodeInternal              = "INTERNAL"
)

// Error is a coded application error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Status  int    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Validation returns a 400 error for a missing or malformed field.
func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message, Status: 400}
}

// ValidationField returns a 400 error naming the offending field.
func ValidationField(field, message string) *Error {
	return &Error{Code: CodeValidation, Message: message, Field: field, Status: 400}
}

// InvalidHierarchy returns a 400 error for a category parent/type mismatch.
func InvalidHierarchy(message string) *Error {
	return &Error{Code: CodeInvalidHierarchy, Message: message, Status: 400}
}

// IncompletePublication returns a 400 error for a publish attempt on a
// record missing its title or primary content.
func IncompletePublication(message string) *Error {
	return &Error{Code: CodeIncompletePublication, Message: message, Status: 400}
}

// Unauthorized returns a 401 error for requests without a valid session.
func Unauthorized() *Error {
	return &Error{Code: CodeUnauthorized, Message: "authentication required", Status: 401}
}

// Forbidden returns a 403 error for a role check failure.
func Forbidden(message string) *Error {
	if message == "" {
		message = "insufficient permissions"
	}
	return &Error{Code: CodeForbidden, Message: message, Status: 403}
}

// NotFound returns a 404 error for an id lookup miss.
func NotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: resource + " not found", Status: 404}
}

// Conflict returns a 409 error for an operation rejected by current state,
// such as deleting a category that still has children.
func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message, Status: 409}
}

// Internal returns a generic 500 error. The underlying cause is logged
// at the call site, never sent to the client.
func Internal() *Error {
	return &Error{Code: CodeInternal, Message: "internal server error", Status: 500}
}
