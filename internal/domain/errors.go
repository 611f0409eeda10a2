package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// Application errors
var (
	// ErrNotFound the record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate a unique constraint would be violated
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidInput the request failed validation
	ErrInvalidInput = errors.New("invalid input data")

	// ErrTransient the store is unreachable or timed out; the caller may retry
	ErrTransient = errors.New("store temporarily unavailable")
)

// ValidationError is a single field violation.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors is an ordered list of field violations.
type ValidationErrors []ValidationError

// Error implements error
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}

	if len(e) == 1 {
		return fmt.Sprintf("validation failed: %s - %s", e[0].Field, e[0].Message)
	}

	return fmt.Sprintf("validation failed: %d errors", len(e))
}

// Is lets errors.Is(err, ErrInvalidInput) match any ValidationErrors.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidInput
}

// Add appends a violation
func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, ValidationError{Field: field, Message: message})
}

// HasErrors reports whether any violation was recorded
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Fields lists the fields with violations, in order of first appearance.
func (e ValidationErrors) Fields() []string {
	seen := make(map[string]bool, len(e))
	fields := make([]string, 0, len(e))
	for _, err := range e {
		if !seen[err.Field] {
			seen[err.Field] = true
			fields = append(fields, err.Field)
		}
	}
	return fields
}

// GetByField returns the first message recorded for field.
func (e ValidationErrors) GetByField(field string) string {
	for _, err := range e {
		if err.Field == field {
			return err.Message
		}
	}
	return ""
}

// ByField groups the messages per field, the shape used by problem details.
func (e ValidationErrors) ByField() map[string][]string {
	out := make(map[string][]string, len(e))
	for _, err := range e {
		out[err.Field] = append(out[err.Field], err.Message)
	}
	return out
}

// NotFoundError names the entity that was not found
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements error
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

// Is matches ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a not-found error for a numeric id.
func NewNotFoundError(entity string, id int64) *NotFoundError {
	return &NotFoundError{
		Entity: entity,
		ID:     strconv.FormatInt(id, 10),
	}
}

// DuplicateError names the unique field that collided
type DuplicateError struct {
	Entity string
	Field  string
	Value  string
}

// Error implements error
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s '%s' already exists", e.Entity, e.Field, e.Value)
}

// Is matches ErrDuplicate
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// NewDuplicateError creates a duplicate error
func NewDuplicateError(entity, field, value string) *DuplicateError {
	return &DuplicateError{
		Entity: entity,
		Field:  field,
		Value:  value,
	}
}
