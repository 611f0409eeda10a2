package customers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hanssonfredrik/customers/pkg/res"
)

// Error classes an API failure can be matched against with errors.Is.
var (
	ErrNotFound    = errors.New("customer not found")
	ErrConflict    = errors.New("customer conflicts with an existing one")
	ErrValidation  = errors.New("customer request is invalid")
	ErrUnavailable = errors.New("customer service unavailable")
)

// APIError is a non-2xx response decoded from its problem details.
type APIError struct {
	StatusCode int
	Problem    res.ProblemDetails
}

// Error implements error
func (e *APIError) Error() string {
	msg := e.Problem.Title
	if e.Problem.Detail != "" {
		msg += ": " + e.Problem.Detail
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("customers api: %d %s", e.StatusCode, msg)
}

// Is maps the status code onto the error classes.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrValidation:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	case ErrUnavailable:
		return e.StatusCode == http.StatusServiceUnavailable ||
			e.StatusCode == http.StatusBadGateway ||
			e.StatusCode == http.StatusGatewayTimeout
	}
	return false
}

// FieldErrors returns the validation messages per field, if any.
func (e *APIError) FieldErrors() map[string][]string {
	return e.Problem.Errors
}
